package docstore

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var recordJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ToRecord flattens a struct into a Record using its json tags. Int64
// ids tagged `json:",string"` become strings, which keeps snowflake ids
// exact in every backend.
func ToRecord(v interface{}) (Record, error) {
	data, err := recordJSON.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	var rec Record
	if err := recordJSON.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return rec, nil
}

// DecodeRecord maps a Record back onto a typed struct. Input is weakly
// typed so string ids and stringly numbers coming out of the bolt
// backend decode cleanly.
func DecodeRecord(rec Record, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return errors.Wrap(err, "decode record")
	}
	if err := dec.Decode(rec); err != nil {
		return errors.Wrap(err, "decode record")
	}
	return nil
}

// RecordID extracts the id field of a record, tolerating the string and
// numeric encodings produced by the different backends.
func RecordID(rec Record) int64 {
	return cast.ToInt64(rec["id"])
}
