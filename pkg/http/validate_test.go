package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleQuery struct {
	Symbol string `query:"symbol" validate:"required"`
	Count  int    `query:"count" default:"50" validate:"gte=1,lte=1000"`
	Order  string `query:"order" default:"newest" validate:"oneof=newest oldest"`
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?symbol=BTC", nil), httptest.NewRecorder())

	var q sampleQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if q.Count != 50 || q.Order != "newest" {
		t.Fatalf("defaults not applied: %+v", q)
	}
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?count=5000&order=sideways", nil), httptest.NewRecorder())

	var q sampleQuery
	errs, ok := ReadAndValidateRequest(c, &q).([]ValidationError)
	if !ok || len(errs) != 3 {
		t.Fatalf("expected three validation errors, got %#v", errs)
	}
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Code
	}
	if fields["symbol"] != "ERR_REQUIRED" || fields["count"] != "ERR_LTE" || fields["order"] != "ERR_ONEOF" {
		t.Fatalf("unexpected errors: %v", fields)
	}
	for _, e := range errs {
		if e.Field == "order" && !strings.Contains(e.Message, "newest, oldest") {
			t.Fatalf("unexpected oneof message %q", e.Message)
		}
	}
}

type sampleAllocation struct {
	Asset      string  `json:"asset" validate:"required,max=8"`
	Percentage float64 `json:"allocation_percentage" validate:"gte=0,lte=100"`
}

func TestValidateMessagesAndParams(t *testing.T) {
	errs, ok := Validate(&sampleAllocation{Asset: "TOOLONGTICKER", Percentage: 120}).([]ValidationError)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected two validation errors, got %#v", errs)
	}
	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	if got := byField["asset"].Message; got != "asset must be at most 8 characters" {
		t.Fatalf("unexpected asset message %q", got)
	}
	pct := byField["allocation_percentage"]
	if pct.Code != "ERR_LTE" || pct.Params["max"] != "100" {
		t.Fatalf("unexpected percentage error %+v", pct)
	}
	if Validate(&sampleAllocation{Asset: "BTC", Percentage: 40}) != nil {
		t.Fatalf("expected valid allocation")
	}
}
