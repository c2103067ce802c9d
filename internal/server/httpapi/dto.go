package httpapi

import (
	"strings"
	"time"

	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/paging"
)

// dateOnly marshals as "2006-01-02". Purchase, expiration and renovation
// dates are calendar dates on the wire.
type dateOnly struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

func (d dateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateOnlyLayout) + `"`), nil
}

func (d *dateOnly) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

type passportRequest struct {
	Name             string `json:"name"`
	Model            string `json:"model"`
	SerialPrefix     string `json:"serialPrefix"`
	FromSerialNumber int    `json:"fromSerialNumber"`
	ToSerialNumber   int    `json:"toSerialNumber"`
	WarrantyMonths   int    `json:"warrantyMonths"`
}

type passportResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Model            string `json:"model"`
	SerialPrefix     string `json:"serialPrefix"`
	FromSerialNumber int    `json:"fromSerialNumber"`
	ToSerialNumber   int    `json:"toSerialNumber"`
	WarrantyMonths   int    `json:"warrantyMonths"`
}

func toPassportResponse(p *models.Passport) *passportResponse {
	return &passportResponse{
		ID:               p.ID,
		Name:             p.Name,
		Model:            p.Model,
		SerialPrefix:     p.SerialPrefix,
		FromSerialNumber: p.FromSerialNumber,
		ToSerialNumber:   p.ToSerialNumber,
		WarrantyMonths:   p.WarrantyMonths,
	}
}

type userResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

func toUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Address:  u.Address,
		Role:     string(u.Role),
	}
}

type deviceResponse struct {
	SerialNumber           string        `json:"serialNumber"`
	PassportID             int64         `json:"passportId"`
	PurchaseDate           dateOnly      `json:"purchaseDate"`
	WarrantyExpirationDate dateOnly      `json:"warrantyExpirationDate"`
	Comment                *string       `json:"comment"`
	Owner                  *userResponse `json:"owner"`
}

func toDeviceResponse(d *models.Device) *deviceResponse {
	resp := &deviceResponse{
		SerialNumber:           d.SerialNumber,
		PassportID:             d.PassportID,
		PurchaseDate:           dateOnly{d.PurchaseDate},
		WarrantyExpirationDate: dateOnly{d.WarrantyExpirationDate},
		Comment:                d.Comment,
	}
	if d.Owner != nil {
		resp.Owner = toUserResponse(d.Owner)
	}
	return resp
}

type renovationResponse struct {
	ID                 string    `json:"id"`
	DeviceSerialNumber string    `json:"deviceSerialNumber"`
	Description        *string   `json:"description"`
	RenovationDate     *dateOnly `json:"renovationDate"`
}

func toRenovationResponse(r *models.Renovation) *renovationResponse {
	resp := &renovationResponse{
		ID:                 r.ID,
		DeviceSerialNumber: r.DeviceSerialNumber,
		Description:        r.Description,
	}
	if r.RenovationDate != nil {
		resp.RenovationDate = &dateOnly{*r.RenovationDate}
	}
	return resp
}

type renovationRequest struct {
	Description    *string   `json:"description"`
	RenovationDate *dateOnly `json:"renovationDate"`
}

type deviceCreateRequest struct {
	SerialNumber string   `json:"serialNumber"`
	PurchaseDate dateOnly `json:"purchaseDate"`
	UserID       int64    `json:"userId"`
}

type anonymousDeviceRequest struct {
	SerialNumber string   `json:"serialNumber"`
	PurchaseDate dateOnly `json:"purchaseDate"`
}

type deviceUpdateRequest struct {
	PurchaseDate dateOnly `json:"purchaseDate"`
	Comment      *string  `json:"comment"`
}

type userRegisterRequest struct {
	FullName     string   `json:"fullName"`
	Password     string   `json:"password"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	SerialNumber string   `json:"serialNumber"`
	PurchaseDate dateOnly `json:"purchaseDate"`
}

type userUpdateRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type passwordUpdateRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

// mapPage converts a page of models into a page of DTOs, keeping the
// metadata intact.
func mapPage[M, D any](p *paging.Page[M], convert func(M) D) *paging.Page[D] {
	items := make([]D, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, convert(item))
	}
	return &paging.Page[D]{
		Items:       items,
		CurrentPage: p.CurrentPage,
		Size:        p.Size,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
	}
}
