package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-15", "2000-02-29", "1999-12-31"}
	invalid := []string{"2024-13-01", "2024-01-32", "15-01-2024", "2024/01/15", "", "not-a-date"}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15T10:30:00.123Z"}
	invalid := []string{"2024-01-15", "10:30:00", "", "2024-01-15 10:30:00"}
	for _, s := range valid {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDateTime(s); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidEmployeeCode(t *testing.T) {
	valid := []string{"EMP-001", "A1", "2024-0001", "X-1-Y-2"}
	invalid := []string{"e", "emp-001", "", "-EMP", "EMP 001", "TOOLONGTOOLONGTOOLONGX"}
	for _, code := range valid {
		if !IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = true, want false", code)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "is required"},
		{Field: "status", Message: "must be one of present, absent, leave, half_day"},
	}
	if errs.Error() != "date: is required; status: must be one of present, absent, leave, half_day" {
		t.Errorf("unexpected Error(): %q", errs.Error())
	}
	m := errs.ToMap()
	if m["date"] != "is required" || len(m) != 2 {
		t.Errorf("unexpected ToMap(): %v", m)
	}
}
