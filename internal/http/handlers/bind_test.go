package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Title   string `json:"title"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter[T any]() *gin.Engine {
	return setupRouter(http.MethodPost, "/bind", func(ctx *gin.Context) {
		var req T
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})
}

func postBind(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBindError(t *testing.T, w *httptest.ResponseRecorder) bindErrorResponse {
	t.Helper()

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	if resp.Error.Code != "invalid_request" || resp.Error.Title != "Validation failed" {
		t.Fatalf("unexpected error header: %+v", resp.Error)
	}
	return resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	w := postBind(bindRouter[product.CreateProductRequest](), `{"description":"x","price":0,"category":"Toys"}`)
	resp := decodeBindError(t, w)

	wantRules := map[string]string{
		"name":     "required",
		"price":    "gt",
		"category": "oneof",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_NestedFieldPath(t *testing.T) {
	w := postBind(bindRouter[order.PlaceOrderRequest](), `{"items":[{"productId":"p1","quantity":0}],"address":"x"}`)
	resp := decodeBindError(t, w)

	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("want one field error, got %+v", resp.Error.Details.Fields)
	}
	if got := resp.Error.Details.Fields[0].Field; got != "items[0].quantity" {
		t.Fatalf("got field %q, want items[0].quantity", got)
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	w := postBind(bindRouter[product.RateRequest](), `{"id":"p1","rating":"five"}`)
	resp := decodeBindError(t, w)

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "rating" {
		t.Fatalf("expected detail field to be rating, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected a type rule in details.fields, got %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_SyntaxAndEmptyBody(t *testing.T) {
	r := bindRouter[product.DeleteRequest]()

	if resp := decodeBindError(t, postBind(r, `{"id":`)); resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("got %q, want invalid_json_syntax", resp.Error.Details.JSON)
	}
	if resp := decodeBindError(t, postBind(r, ``)); resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("got %q, want empty_body", resp.Error.Details.JSON)
	}
}
