package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront/internal/usecase"
)

func TestWriteOrders(t *testing.T) {
	gid := "order_abc"
	orders := []usecase.OrderOutput{
		{
			ID: 1, UserID: 7, AddressID: 3, Date: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			Total: 36000, AmountDue: 36000, Status: "Pending", PaymentMode: "Cash on Delivery",
			Items: []usecase.OrderItemOutput{{ProductName: "Mug", Quantity: 2}, {ProductName: "Pen", Quantity: 1}},
		},
		{
			ID: 2, UserID: 7, AddressID: 3, Date: time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
			Total: 1000, AmountPaid: 1000, Status: "Delivered", PaymentMode: "Online Payment",
			RazorpayOrderID: &gid,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, orders))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Equal(t, "Orders", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	require.Equal(t, "ID", sheet.Rows[0].Cells[0].Value)
	require.Equal(t, "Mug x 2, Pen x 1", sheet.Rows[1].Cells[10].Value)
	require.Equal(t, "order_abc", sheet.Rows[2].Cells[9].Value)
	require.Equal(t, "Delivered", sheet.Rows[2].Cells[4].Value)
}

func TestWriteOrders_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1)
}
