package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport summarizes one business day.
type DailyReport struct {
	Date        string          `json:"date"`
	OrderCount  int             `json:"orderCount"`
	Revenue     decimal.Decimal `json:"revenue"`
	Discount    decimal.Decimal `json:"discount"`
	NetRevenue  decimal.Decimal `json:"netRevenue"`
	GuestsCount int             `json:"guestsCount"`
}

// RevenuePoint is one bucket on the revenue chart.
type RevenuePoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// ProductSales ranks a product over the queried range.
type ProductSales struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// PaymentMethodSummary totals one payment method.
type PaymentMethodSummary struct {
	Method  string          `json:"method"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ReportRange bounds a report query.
type ReportRange struct {
	From time.Time
	To   time.Time
}

func (r ReportRange) query() url.Values {
	query := url.Values{}
	if !r.From.IsZero() {
		query.Set("from", r.From.Format("2006-01-02"))
	}
	if !r.To.IsZero() {
		query.Set("to", r.To.Format("2006-01-02"))
	}
	return query
}

// ReportsService covers /Reports.
type ReportsService struct {
	client *Client
}

func (s *ReportsService) Daily(ctx context.Context, date time.Time) (*DailyReport, error) {
	query := url.Values{}
	if !date.IsZero() {
		query.Set("date", date.Format("2006-01-02"))
	}
	var report DailyReport
	if err := s.client.do(ctx, http.MethodGet, "/Reports/daily", query, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportsService) Revenue(ctx context.Context, rang ReportRange) ([]RevenuePoint, error) {
	var points []RevenuePoint
	if err := s.client.do(ctx, http.MethodGet, "/Reports/revenue", rang.query(), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *ReportsService) Products(ctx context.Context, rang ReportRange) ([]ProductSales, error) {
	var sales []ProductSales
	if err := s.client.do(ctx, http.MethodGet, "/Reports/products", rang.query(), nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *ReportsService) PaymentMethods(ctx context.Context, rang ReportRange) ([]PaymentMethodSummary, error) {
	var summaries []PaymentMethodSummary
	if err := s.client.do(ctx, http.MethodGet, "/Reports/payment-methods", rang.query(), nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Export downloads the raw report file (CSV) for the range.
func (s *ReportsService) Export(ctx context.Context, rang ReportRange) ([]byte, error) {
	var data []byte
	if err := s.client.do(ctx, http.MethodGet, "/Reports/export", rang.query(), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}
