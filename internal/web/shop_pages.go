package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

type cartData struct {
	Cart usecase.CartResponse
}

type checkoutData struct {
	Cart      usecase.CartResponse
	Addresses []usecase.AddressDTO
}

type paymentData struct {
	Key   string
	Order usecase.CheckoutOutput
}

// フォームの数値。空や不正は0（usecase側でrequiredになる）
func formInt(c echo.Context, name string) int64 {
	n, _ := strconv.ParseInt(c.FormValue(name), 10, 64)
	return n
}

func (p *Pages) cart(c echo.Context) error {
	out, err := p.deps.Cart.GetCart(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "cart", p.data(c, "Cart", cartData{Cart: out}))
}

func (p *Pages) addToCart(c echo.Context) error {
	qty := formInt(c, "quantity")
	if c.FormValue("quantity") == "" {
		qty = 1
	}
	_, err := p.deps.Cart.AddToCart(c.Request().Context(), currentUserID(c), usecase.AddCartInput{
		ProductID: formInt(c, "product_id"),
		Quantity:  qty,
	})
	if err != nil {
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (p *Pages) removeFromCart(c echo.Context) error {
	if _, err := p.deps.Cart.RemoveFromCart(c.Request().Context(), currentUserID(c), formInt(c, "cartitem_id")); err != nil {
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (p *Pages) checkoutForm(c echo.Context) error {
	return p.renderCheckout(c, http.StatusOK, nil, "")
}

func (p *Pages) renderCheckout(c echo.Context, code int, fields map[string]string, msg string) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	cart, err := p.deps.Cart.GetCart(ctx, userID)
	if err != nil {
		return p.fail(c, err)
	}
	addrs, err := p.deps.Address.List(ctx, userID)
	if err != nil {
		return p.fail(c, err)
	}

	pd := p.data(c, "Checkout", checkoutData{Cart: cart, Addresses: addrs})
	pd.Fields = fields
	pd.Error = msg
	return p.render(c, code, "checkout", pd)
}

// CODは注文詳細へ、オンラインは決済ページを出す
func (p *Pages) placeOrder(c echo.Context) error {
	out, err := p.deps.Checkout.Checkout(c.Request().Context(), currentUserID(c), usecase.CheckoutInput{
		AddressID:   formInt(c, "address_id"),
		PaymentMode: c.FormValue("payment_mode"),
	})
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			return p.renderCheckout(c, http.StatusBadRequest, fields, "")
		}
		if he, ok := usecase.AsHTTPError(err); ok && he.Status == http.StatusNotFound {
			return p.renderCheckout(c, http.StatusNotFound, nil, he.Message)
		}
		if orderID, ok := unpaidOrderID(err); ok {
			return p.renderUnpaidOrder(c, orderID, err)
		}
		return p.fail(c, err)
	}

	if c.FormValue("payment_mode") == string(model.PaymentModeOnline) {
		return p.render(c, http.StatusOK, "payment", p.data(c, "Payment", paymentData{Key: p.cfg.RazorpayKey, Order: out}))
	}
	return c.Redirect(http.StatusSeeOther, "/profile/order/"+strconv.FormatInt(out.OrderID, 10))
}

// Razorpay checkout.js から戻ってくるフォーム
func (p *Pages) verifyPayment(c echo.Context) error {
	out, err := p.deps.Payment.VerifyPayment(c.Request().Context(), currentUserID(c), usecase.VerifyPaymentInput{
		RazorpayOrderID:   c.FormValue("razorpay_order_id"),
		RazorpayPaymentID: c.FormValue("razorpay_payment_id"),
		RazorpaySignature: c.FormValue("razorpay_signature"),
	})
	if err != nil {
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/profile/order/"+strconv.FormatInt(out.OrderID, 10))
}

// 注文は保存済みでゲートウェイ注文だけ失敗した
func unpaidOrderID(err error) (int64, bool) {
	he, ok := usecase.AsHTTPError(err)
	if !ok || he.Status != http.StatusBadGateway {
		return 0, false
	}
	data := he.Data
	id, ok := data["order_id"].(int64)
	return id, ok && id > 0
}

// 注文ページを502で出し、Pay nowから再試行させる
func (p *Pages) renderUnpaidOrder(c echo.Context, orderID int64, cause error) error {
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), cause)
	out, err := p.deps.Orders.GetMyOrder(c.Request().Context(), currentUserID(c), orderID)
	if err != nil {
		return p.fail(c, err)
	}
	pd := p.data(c, "Order #"+strconv.FormatInt(out.ID, 10), orderData{Order: out})
	pd.Error = "Payment gateway is unavailable. Your order is saved, use Pay now to try again."
	return p.render(c, http.StatusBadGateway, "order", pd)
}

// Online Paymentの未払い注文にゲートウェイ注文を付け直して決済ページへ
func (p *Pages) payOrder(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return p.fail(c, usecase.ErrNotFound)
	}
	out, err := p.deps.Payment.RetryGatewayOrder(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "payment", p.data(c, "Payment", paymentData{Key: p.cfg.RazorpayKey, Order: out}))
}
