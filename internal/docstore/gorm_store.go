package docstore

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// collectionDef binds a collection name to its gorm model.
type collectionDef struct {
	model func() interface{} // returns *T
	slice func() interface{} // returns *[]T
}

var gormCollections = map[string]collectionDef{
	"products": {
		model: func() interface{} { return new(domain.Product) },
		slice: func() interface{} { return new([]domain.Product) },
	},
	"orders": {
		model: func() interface{} { return new(domain.Order) },
		slice: func() interface{} { return new([]domain.Order) },
	},
	"sys_config": {
		model: func() interface{} { return new(domain.SysConfig) },
		slice: func() interface{} { return new([]domain.SysConfig) },
	},
	"sys_opr": {
		model: func() interface{} { return new(domain.SysOpr) },
		slice: func() interface{} { return new([]domain.SysOpr) },
	},
}

var columnNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// GormStore implements Store on top of gorm with one typed table per
// collection, migrated from domain.Tables.
type GormStore struct {
	db   *gorm.DB
	node *snowflake.Node
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "init id node")
	}
	return &GormStore{db: db, node: node}, nil
}

// DB exposes the underlying handle for migrations and tests.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) List(ctx context.Context, collection string, q Query) ([]Record, int64, error) {
	def, ok := gormCollections[collection]
	if !ok {
		return nil, 0, errors.Wrap(ErrUnknownCollection, collection)
	}

	db := s.db.WithContext(ctx).Model(def.model())
	for field, value := range q.Eq {
		if !columnNamePattern.MatchString(field) {
			return nil, 0, errors.Errorf("docstore: bad filter field %q", field)
		}
		db = db.Where(fmt.Sprintf("%s = ?", field), value)
	}
	if q.MatchField != "" && q.Match != "" {
		if !columnNamePattern.MatchString(q.MatchField) {
			return nil, 0, errors.Errorf("docstore: bad match field %q", q.MatchField)
		}
		db = db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", q.MatchField), "%"+strings.ToLower(q.Match)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count "+collection)
	}

	if q.OrderBy != "" {
		if !columnNamePattern.MatchString(q.OrderBy) {
			return nil, 0, errors.Errorf("docstore: bad order field %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		db = db.Order(q.OrderBy + " " + dir)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	slicePtr := def.slice()
	if err := db.Find(slicePtr).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list "+collection)
	}

	sv := reflect.ValueOf(slicePtr).Elem()
	records := make([]Record, 0, sv.Len())
	for i := 0; i < sv.Len(); i++ {
		rec, err := ToRecord(sv.Index(i).Addr().Interface())
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, nil
}

func (s *GormStore) Get(ctx context.Context, collection string, id int64) (Record, error) {
	def, ok := gormCollections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	model := def.model()
	err := s.db.WithContext(ctx).Where("id = ?", id).First(model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get "+collection)
	}
	return ToRecord(model)
}

func (s *GormStore) Create(ctx context.Context, collection string, rec Record) (int64, error) {
	def, ok := gormCollections[collection]
	if !ok {
		return 0, errors.Wrap(ErrUnknownCollection, collection)
	}
	model := def.model()
	if err := DecodeRecord(rec, model); err != nil {
		return 0, err
	}

	id := modelID(model)
	if id == 0 {
		id = s.node.Generate().Int64()
		setModelID(model, id)
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, errors.Wrap(err, "create "+collection)
	}
	return id, nil
}

func (s *GormStore) Update(ctx context.Context, collection string, id int64, partial Record) error {
	def, ok := gormCollections[collection]
	if !ok {
		return errors.Wrap(ErrUnknownCollection, collection)
	}
	updates := make(map[string]interface{}, len(partial))
	for field, value := range partial {
		if field == "id" {
			continue
		}
		if !columnNamePattern.MatchString(field) {
			return errors.Errorf("docstore: bad update field %q", field)
		}
		updates[field] = value
	}
	ret := s.db.WithContext(ctx).Model(def.model()).Where("id = ?", id).Updates(updates)
	if ret.Error != nil {
		return errors.Wrap(ret.Error, "update "+collection)
	}
	if ret.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, collection string, id int64) error {
	def, ok := gormCollections[collection]
	if !ok {
		return errors.Wrap(ErrUnknownCollection, collection)
	}
	ret := s.db.WithContext(ctx).Where("id = ?", id).Delete(def.model())
	if ret.Error != nil {
		return errors.Wrap(ret.Error, "delete "+collection)
	}
	if ret.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// modelID reads the ID field every collection model carries.
func modelID(model interface{}) int64 {
	return reflect.ValueOf(model).Elem().FieldByName("ID").Int()
}

func setModelID(model interface{}, id int64) {
	reflect.ValueOf(model).Elem().FieldByName("ID").SetInt(id)
}
