package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-01", "2024-03-01T12:00:00.000Z", true},
		{" 2025-12-31 ", "2025-12-31T12:00:00.000Z", true},
		{"2024-02-29", "2024-02-29T12:00:00.000Z", true},
		{"2023-02-29", "", false},
		{"03/01/2024", "", false},
		{"2024-3-1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC).In(loc)
	if got := NormalizeDate(in).String(); got != "2024-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected normalized date %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 1)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2024-03-01T12:00:00.000Z"` {
		t.Fatalf("unexpected json %s (err=%v)", b, err)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil || !back.Equal(d.Time) {
		t.Fatalf("unexpected decode %v (err=%v)", back, err)
	}
	if err := back.UnmarshalJSON([]byte(`"2024-03-02"`)); err != nil || back.Day() != "2024-03-02" {
		t.Fatalf("unexpected day decode %v (err=%v)", back, err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		if got, ok := ParseCategory(string(c)); !ok || got != c {
			t.Fatalf("expected %s to be valid", c)
		}
	}
	for _, s := range []string{"food", "Groceries", "", "OTHER"} {
		if _, ok := ParseCategory(s); ok {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestRecordInputValidate(t *testing.T) {
	good := RecordInput{Description: " Coffee ", Amount: "4.5", Category: "Food", Date: "2024-03-01"}
	rec, err := good.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if rec.Description != "Coffee" || rec.Amount != 4.5 || rec.Category != Food || rec.Date.String() != "2024-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected record %+v", rec)
	}

	cases := []struct {
		name string
		in   RecordInput
		msg  string
	}{
		{"missing text", RecordInput{Amount: "1", Category: "Food", Date: "2024-03-01"}, MsgMissingField},
		{"blank text", RecordInput{Description: "   ", Amount: "1", Category: "Food", Date: "2024-03-01"}, MsgMissingField},
		{"missing date", RecordInput{Description: "a", Amount: "1", Category: "Food"}, MsgMissingField},
		{"zero amount", RecordInput{Description: "a", Amount: "0", Category: "Food", Date: "2024-03-01"}, MsgInvalidAmount},
		{"negative amount", RecordInput{Description: "a", Amount: "-3", Category: "Food", Date: "2024-03-01"}, MsgInvalidAmount},
		{"too large", RecordInput{Description: "a", Amount: "1000000.01", Category: "Food", Date: "2024-03-01"}, MsgInvalidAmount},
		{"not a number", RecordInput{Description: "a", Amount: "NaN", Category: "Food", Date: "2024-03-01"}, MsgInvalidAmount},
		{"long text", RecordInput{Description: strings.Repeat("x", 501), Amount: "1", Category: "Food", Date: "2024-03-01"}, MsgDescriptionTooLong},
		{"bad category", RecordInput{Description: "a", Amount: "1", Category: "Rent", Date: "2024-03-01"}, MsgInvalidCategory},
		{"bad date", RecordInput{Description: "a", Amount: "1", Category: "Food", Date: "01-03-2024"}, MsgInvalidDate},
		{"amount checked before category", RecordInput{Description: "a", Amount: "0", Category: "Rent", Date: "x"}, MsgInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, verr.Message)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is ErrValidation")
			}
		})
	}
}

func TestRecordInputBoundaries(t *testing.T) {
	in := RecordInput{Description: strings.Repeat("é", 500), Amount: "1000000", Category: "Other", Date: "2024-01-01"}
	if _, err := in.Validate(); err != nil {
		t.Fatalf("expected 500 characters and 1,000,000 to be accepted, got %v", err)
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{Description: "ok", Amount: 1, Category: Bills, Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Record{
		{Description: "", Amount: 1, Category: Bills, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: 0, Category: Bills, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: 1, Category: "Rent", Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: 1, Category: Bills},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPrincipalDisplayName(t *testing.T) {
	cases := []struct {
		p    Principal
		want string
	}{
		{Principal{FirstName: "Asha", LastName: "Rao"}, "Asha Rao"},
		{Principal{FirstName: "Asha"}, "Asha"},
		{Principal{Name: "Asha R"}, "Asha R"},
		{Principal{}, "User"},
	}
	for _, tc := range cases {
		if got := tc.p.DisplayName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")
	err := StoreError("insert record", cause)
	if !errors.Is(err, ErrStore) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if StoreError("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
