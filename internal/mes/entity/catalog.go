package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// Customer 客户
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
}

func CustomerFromRecord(r sheet.Record) Customer {
	return Customer{
		ID:        r.ID(),
		Name:      r.Get("name"),
		Email:     r.Get("email"),
		Phone:     r.Get("phone"),
		Company:   r.Get("company"),
		Address:   r.Get("address"),
		CreatedAt: r.Get("created_at"),
	}
}

func (c Customer) Fields() map[string]string {
	return map[string]string{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"company": c.Company,
		"address": c.Address,
	}
}

// Product 产品。estimated_weight 和 complexity 参与质检规则匹配
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DrawingURL      string  `json:"drawing_url,omitempty"`
	Material        string  `json:"material,omitempty"`
	UnitPrice       float64 `json:"unit_price"`
	EstimatedWeight float64 `json:"estimated_weight,omitempty"`
	Complexity      string  `json:"complexity"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func ProductFromRecord(r sheet.Record) Product {
	return Product{
		ID:              r.ID(),
		Name:            r.Get("name"),
		DrawingURL:      r.Get("drawing_url"),
		Material:        r.Get("material"),
		UnitPrice:       r.Float("unit_price"),
		EstimatedWeight: r.Float("estimated_weight"),
		Complexity:      r.Get("complexity"),
		Notes:           r.Get("notes"),
		CreatedAt:       r.Get("created_at"),
	}
}

func (p Product) Fields() map[string]string {
	return map[string]string{
		"name":             p.Name,
		"drawing_url":      p.DrawingURL,
		"material":         p.Material,
		"unit_price":       sheet.FormatFloat(p.UnitPrice),
		"estimated_weight": sheet.FormatFloat(p.EstimatedWeight),
		"complexity":       p.Complexity,
		"notes":            p.Notes,
	}
}
