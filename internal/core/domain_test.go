package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-08-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-08-01" {
		t.Fatalf("expected 2024-08-01, got %s", d)
	}

	for _, bad := range []string{"", "01-08-2024", "2024-13-01", "2024-08-01T10:00:00", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateAfter(t *testing.T) {
	a := NewDate(2024, 8, 1)
	b := NewDate(2024, 8, 31)
	if a.After(b) {
		t.Fatal("2024-08-01 should not be after 2024-08-31")
	}
	if !b.After(a) {
		t.Fatal("2024-08-31 should be after 2024-08-01")
	}
	if a.After(a) {
		t.Fatal("a date is not after itself")
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Date:     NewDate(2024, 8, 1),
		Category: "Food",
		Notes:    "Lunch",
		Amount:   Money{Cents: 2550},
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"valid", func(e *Expense) {}, nil},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"empty category", func(e *Expense) { e.Category = " " }, ErrEmptyCategory},
		{"empty notes", func(e *Expense) { e.Notes = "" }, ErrEmptyNotes},
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -100} }, ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); err != tc.wantErr {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestExpenseJSONShape(t *testing.T) {
	e := Expense{
		ID:       7,
		Date:     NewDate(2024, 8, 1),
		Category: "Food",
		Notes:    "Lunch",
		Amount:   Money{Cents: 2550},
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"expense_date":"2024-08-01","category":"Food","notes":"Lunch","amount":25.50}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	var decoded Expense
	if err := json.Unmarshal([]byte(`{"category":"Transport","notes":"Bus","amount":5.00}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Category != "Transport" || decoded.Amount.Cents != 500 {
		t.Fatalf("unexpected decode result: %+v", decoded)
	}
}
