package testutils

import (
	"testing"

	"github.com/shopspring/decimal"
)

// AssertEqual is a helper function for asserting equality in tests
func AssertEqual(t *testing.T, expected, actual any, message string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", message, expected, actual)
	}
}

// AssertTrue is a helper function for asserting boolean true
func AssertTrue(t *testing.T, condition bool, message string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true, got false", message)
	}
}

// AssertFalse is a helper function for asserting boolean false
func AssertFalse(t *testing.T, condition bool, message string) {
	t.Helper()
	if condition {
		t.Errorf("%s: expected false, got true", message)
	}
}

// AssertNil is a helper function for asserting nil values
func AssertNil(t *testing.T, value any, message string) {
	t.Helper()
	if value != nil {
		t.Errorf("%s: expected nil, got %v", message, value)
	}
}

// AssertNotNil is a helper function for asserting non-nil values
func AssertNotNil(t *testing.T, value any, message string) {
	t.Helper()
	if value == nil {
		t.Errorf("%s: expected non-nil value, got nil", message)
	}
}

// AssertNoError is a helper function for asserting no error
func AssertNoError(t *testing.T, err error, message string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", message, err)
	}
}

// AssertError is a helper function for asserting an error
func AssertError(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected error, got nil", message)
	}
}

// AssertDecimalEqual asserts two decimals are numerically equal
func AssertDecimalEqual(t *testing.T, expected, actual decimal.Decimal, message string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected %s, got %s", message, expected.String(), actual.String())
	}
}
