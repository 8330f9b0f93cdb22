package services

import (
	"errors"
	"testing"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestValidate_CreateTask_Valid(t *testing.T) {
	v := newTestValidator(t)

	cases := []string{
		`{"product_image_ref":"upload://abc","has_model":true,"context":"studio"}`,
		`{"product_image_ref":"upload://abc","has_model":false,"context":"custom","custom_context":"rooftop at dusk","model_type":"female_asian"}`,
		`{"product_image_ref":"upload://abc","has_model":true,"context":"minimal","model_type":null}`,
	}
	for _, body := range cases {
		if err := v.Validate(SchemaCreateTask, []byte(body)); err != nil {
			t.Errorf("expected valid body %s, got: %v", body, err)
		}
	}
}

func TestValidate_CreateTask_Invalid(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing product_image_ref", `{"has_model":true,"context":"studio"}`},
		{"unknown context", `{"product_image_ref":"upload://abc","has_model":true,"context":"beach"}`},
		{"has_model not boolean", `{"product_image_ref":"upload://abc","has_model":"yes","context":"studio"}`},
		{"unknown model type", `{"product_image_ref":"upload://abc","has_model":false,"context":"studio","model_type":"robot"}`},
		{"unknown field (additionalProperties: false)", `{"product_image_ref":"upload://abc","has_model":true,"context":"studio","cost":0}`},
		{"not JSON", `{"product_image_ref":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(SchemaCreateTask, []byte(tc.body))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got: %v", err)
			}
		})
	}
}

func TestValidate_CreateVideo(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(SchemaCreateVideo, []byte(`{"source_image_id":"img-1","action":"spin"}`)); err != nil {
		t.Errorf("expected valid, got: %v", err)
	}
	if err := v.Validate(SchemaCreateVideo, []byte(`{"source_image_id":"img-1","action":"moonwalk"}`)); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown action, got: %v", err)
	}
	if err := v.Validate(SchemaCreateVideo, []byte(`{"action":"walk"}`)); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for missing source_image_id, got: %v", err)
	}
}

func TestValidate_Purchase(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(SchemaPurchase, []byte(`{"package_id":"pro"}`)); err != nil {
		t.Errorf("expected valid, got: %v", err)
	}
	if err := v.Validate(SchemaPurchase, []byte(`{"package_id":""}`)); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty package_id, got: %v", err)
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := newTestValidator(t)
	err := v.Validate("refund", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for unknown schema")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("unknown schema is a programming error, not a validation failure")
	}
}
