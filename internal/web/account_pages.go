package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/infra/session"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
)

type profileData struct {
	Profile usecase.ProfileOutput
}

type addressData struct {
	Addresses []usecase.AddressDTO
}

type ordersData struct {
	Orders []usecase.OrderOutput
}

type orderData struct {
	Order usecase.OrderOutput
}

var addressFields = []string{"address", "city", "state", "pincode", "phone"}

func (p *Pages) signInForm(c echo.Context) error {
	if _, ok := middleware.CurrentSession(c); ok {
		return c.Redirect(http.StatusFound, "/")
	}
	pd := p.data(c, "Sign in", nil)
	pd.Form = map[string]string{"next": c.QueryParam("next")}
	return p.render(c, http.StatusOK, "sign_in", pd)
}

func (p *Pages) signIn(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := p.deps.Login.Execute(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserInactive) {
			pd := p.data(c, "Sign in", nil)
			pd.Error = "Invalid username or password"
			pd.Form = formValues(c, "username", "next")
			return p.render(c, http.StatusUnauthorized, "sign_in", pd)
		}
		return p.fail(c, err)
	}

	id, err := p.sessions.Create(ctx, session.Session{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff(),
	})
	if err != nil {
		return p.fail(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(p.sessions.TTL().Seconds()),
	})
	return c.Redirect(http.StatusSeeOther, safeNext(c.FormValue("next")))
}

func (p *Pages) signUpForm(c echo.Context) error {
	return p.render(c, http.StatusOK, "sign_up", p.data(c, "Sign up", nil))
}

func (p *Pages) signUp(c echo.Context) error {
	username, email, password := c.FormValue("username"), c.FormValue("email"), c.FormValue("password")

	reject := func(fields map[string]string) error {
		pd := p.data(c, "Sign up", nil)
		pd.Fields = fields
		pd.Form = formValues(c, "username", "email")
		return p.render(c, http.StatusBadRequest, "sign_up", pd)
	}

	if err := p.validator.ValidateRegister(username, email, password); err != nil {
		if fields, ok := fieldErrors(err); ok {
			return reject(fields)
		}
		return p.fail(c, err)
	}

	_, err := p.deps.Register.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, signInPath)
	case errors.Is(err, auth.ErrUsernameAlreadyExists):
		return reject(map[string]string{"username": "A user with that username already exists."})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return reject(map[string]string{"email": "A user with that email already exists."})
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidEmailFormat), errors.Is(err, auth.ErrPasswordTooShort):
		return reject(map[string]string{"username": err.Error()})
	}
	return p.fail(c, err)
}

func (p *Pages) signOut(c echo.Context) error {
	if ck, err := c.Cookie(session.CookieName); err == nil {
		if err := p.sessions.Delete(c.Request().Context(), ck.Value); err != nil {
			c.Logger().Warnf("delete session: %v", err)
		}
	}
	c.SetCookie(&http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return c.Redirect(http.StatusSeeOther, "/")
}

func (p *Pages) profile(c echo.Context) error {
	out, err := p.deps.Profile.GetProfile(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "profile", p.data(c, "Profile", profileData{Profile: out}))
}

func (p *Pages) profileUpdateForm(c echo.Context) error {
	out, err := p.deps.Profile.GetProfile(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	pd := p.data(c, "Edit profile", nil)
	pd.Form = map[string]string{"first_name": out.FirstName, "last_name": out.LastName}
	if out.Profile.DOB != nil {
		pd.Form["dob"] = *out.Profile.DOB
	}
	return p.render(c, http.StatusOK, "profile_update", pd)
}

// 名前・生年月日と、任意で画像
func (p *Pages) profileUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	reject := func(err error) error {
		if fields, ok := fieldErrors(err); ok {
			pd := p.data(c, "Edit profile", nil)
			pd.Fields = fields
			pd.Form = formValues(c, "first_name", "last_name", "dob")
			return p.render(c, http.StatusBadRequest, "profile_update", pd)
		}
		return p.fail(c, err)
	}

	first, last, dob := c.FormValue("first_name"), c.FormValue("last_name"), c.FormValue("dob")
	if _, err := p.deps.Profile.UpdateProfile(ctx, userID, usecase.UpdateProfileInput{
		FirstName: &first,
		LastName:  &last,
		DOB:       &dob,
	}); err != nil {
		return reject(err)
	}

	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return p.fail(c, err)
		}
		defer f.Close()
		if _, err := p.deps.Profile.UploadImage(ctx, userID, usecase.UploadImageInput{
			Filename: fh.Filename,
			Size:     fh.Size,
			Body:     f,
		}); err != nil {
			return reject(err)
		}
	}

	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (p *Pages) changePasswordForm(c echo.Context) error {
	return p.render(c, http.StatusOK, "change_password", p.data(c, "Change password", nil))
}

func (p *Pages) changePassword(c echo.Context) error {
	err := p.deps.Profile.ChangePassword(c.Request().Context(), currentUserID(c), usecase.ChangePasswordInput{
		OldPassword: c.FormValue("old_password"),
		NewPassword: c.FormValue("new_password"),
	})
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			pd := p.data(c, "Change password", nil)
			pd.Fields = fields
			return p.render(c, http.StatusBadRequest, "change_password", pd)
		}
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (p *Pages) addresses(c echo.Context) error {
	return p.renderAddresses(c, http.StatusOK, nil, nil)
}

func (p *Pages) renderAddresses(c echo.Context, code int, fields, form map[string]string) error {
	list, err := p.deps.Address.List(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	pd := p.data(c, "Addresses", addressData{Addresses: list})
	pd.Fields = fields
	pd.Form = form
	return p.render(c, code, "address", pd)
}

func (p *Pages) createAddress(c echo.Context) error {
	_, err := p.deps.Address.Create(c.Request().Context(), currentUserID(c), usecase.AddressRequest{
		Address: c.FormValue("address"),
		City:    c.FormValue("city"),
		State:   c.FormValue("state"),
		Pincode: c.FormValue("pincode"),
		Phone:   c.FormValue("phone"),
	})
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			return p.renderAddresses(c, http.StatusBadRequest, fields, formValues(c, addressFields...))
		}
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/profile/address")
}

func (p *Pages) deleteAddress(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return p.fail(c, usecase.ErrNotFound)
	}
	if err := p.deps.Address.Delete(c.Request().Context(), currentUserID(c), id); err != nil {
		if errors.Is(err, usecase.ErrConflict) {
			return p.renderAddressesWithError(c, "This address is used by an order and cannot be deleted.")
		}
		return p.fail(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/profile/address")
}

func (p *Pages) renderAddressesWithError(c echo.Context, msg string) error {
	list, err := p.deps.Address.List(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	pd := p.data(c, "Addresses", addressData{Addresses: list})
	pd.Error = msg
	return p.render(c, http.StatusConflict, "address", pd)
}

func (p *Pages) orders(c echo.Context) error {
	list, err := p.deps.Orders.ListMyOrders(c.Request().Context(), currentUserID(c))
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "orders", p.data(c, "Orders", ordersData{Orders: list}))
}

func (p *Pages) order(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return p.fail(c, usecase.ErrNotFound)
	}
	out, err := p.deps.Orders.GetMyOrder(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "order", p.data(c, "Order #"+strconv.FormatInt(out.ID, 10), orderData{Order: out}))
}
