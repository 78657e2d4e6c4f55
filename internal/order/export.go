package order

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/nexshop/nexshop/internal/docstore"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
)

// csvRow flattens an order for the admin export download.
type csvRow struct {
	ID            int64   `csv:"id"`
	Status        string  `csv:"status"`
	Total         float64 `csv:"total"`
	ItemCount     int     `csv:"item_count"`
	CustomerName  string  `csv:"customer_name"`
	CustomerEmail string  `csv:"customer_email"`
	Phone         string  `csv:"phone"`
	City          string  `csv:"city"`
	State         string  `csv:"state"`
	Pincode       string  `csv:"pincode"`
	PaymentMethod string  `csv:"payment_method"`
	TransactionID string  `csv:"transaction_id"`
	CreatedAt     string  `csv:"created_at"`
}

// ExportCSV streams every order (newest first) as CSV. Export is a read
// and fails loudly instead of degrading; a partial report is worse than
// none.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	q := docstore.Query{OrderBy: "created_at", Desc: true}
	records, _, err := s.store.List(ctx, Collection, q)
	if err != nil {
		return errors.Wrap(err, "export orders")
	}

	rows := make([]csvRow, 0, len(records))
	for _, rec := range records {
		var o domain.Order
		if err := docstore.DecodeRecord(rec, &o); err != nil {
			return err
		}
		count := 0
		for _, item := range o.Items {
			count += item.Quantity
		}
		rows = append(rows, csvRow{
			ID:            o.ID,
			Status:        o.Status.String(),
			Total:         o.Total,
			ItemCount:     count,
			CustomerName:  o.CustomerInfo.FirstName + " " + o.CustomerInfo.LastName,
			CustomerEmail: o.CustomerInfo.Email,
			Phone:         o.CustomerInfo.Phone,
			City:          o.ShippingAddress.City,
			State:         o.ShippingAddress.State,
			Pincode:       o.ShippingAddress.Pincode,
			PaymentMethod: o.PaymentMethod,
			TransactionID: o.TransactionID,
			CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		})
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "write orders csv")
}
