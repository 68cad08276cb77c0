package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/usecase"

	"github.com/tealeg/xlsx"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	OrdersFilename  = "orders.xlsx"
)

var orderHeaders = []string{
	"ID", "UserID", "AddressID", "Date", "Status", "PaymentMode",
	"Total", "AmountPaid", "AmountDue", "RazorpayOrderID", "Items",
}

// 1注文1行。金額はpaiseのまま
func WriteOrders(w io.Writer, orders []usecase.OrderOutput) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().SetInt64(o.UserID)
		row.AddCell().SetInt64(o.AddressID)
		row.AddCell().SetValue(o.Date.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(o.Status)
		row.AddCell().SetValue(o.PaymentMode)
		row.AddCell().SetInt64(o.Total)
		row.AddCell().SetInt64(o.AmountPaid)
		row.AddCell().SetInt64(o.AmountDue)

		gid := ""
		if o.RazorpayOrderID != nil {
			gid = *o.RazorpayOrderID
		}
		row.AddCell().SetValue(gid)
		row.AddCell().SetValue(itemsSummary(o.Items))
	}

	return file.Write(w)
}

// "商品名 x 数量" をカンマ区切り
func itemsSummary(items []usecase.OrderItemOutput) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.ProductName+" x "+strconv.FormatInt(it.Quantity, 10))
	}
	return strings.Join(parts, ", ")
}
