// internal/domain/orderstore/export.go
package orderstore

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"Order Number", "Client Order ID", "Status", "Payment Method", "Payment Status",
	"Transaction ID", "Customer", "Email", "Phone", "City", "State", "Pincode",
	"Items", "Subtotal", "Shipping", "Tax", "Total", "Currency", "Created At",
}

// ExportXLSX writes every record matching filter to w as a spreadsheet.
// Page and Limit on filter are ignored.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer, filter ListFilter) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	filter.Page = 1
	filter.Limit = maxPageSize
	for {
		records, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		for i := range records {
			writeExportRow(sheet.AddRow(), &records[i])
		}
		if len(records) == 0 || int64(filter.Page*filter.Limit) >= total {
			break
		}
		filter.Page++
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func writeExportRow(row *xlsx.Row, rec *Record) {
	clientID := ""
	if rec.ClientOrderID != nil {
		clientID = *rec.ClientOrderID
	}

	row.AddCell().SetValue(rec.OrderNumber)
	row.AddCell().SetValue(clientID)
	row.AddCell().SetValue(string(rec.Status))
	row.AddCell().SetValue(string(rec.Payment.Method))
	row.AddCell().SetValue(string(rec.Payment.Status))
	row.AddCell().SetValue(rec.Payment.TransactionID)
	row.AddCell().SetValue(rec.ShippingAddress.FullName)
	row.AddCell().SetValue(rec.ShippingAddress.Email)
	row.AddCell().SetValue(rec.ShippingAddress.Phone)
	row.AddCell().SetValue(rec.ShippingAddress.City)
	row.AddCell().SetValue(rec.ShippingAddress.State)
	row.AddCell().SetValue(rec.ShippingAddress.Pincode)
	row.AddCell().SetValue(rec.ItemCount())
	row.AddCell().SetValue(rec.Subtotal)
	row.AddCell().SetValue(rec.ShippingCost)
	row.AddCell().SetValue(rec.Tax)
	row.AddCell().SetValue(rec.Total)
	row.AddCell().SetValue(rec.Payment.Currency)
	row.AddCell().SetValue(rec.CreatedAt.Format("2006-01-02 15:04:05"))
}
