package sqlutil

import (
	"reflect"
	"testing"

	"github.com/sqlc-dev/pqtype"
)

func TestNullStringsRoundTrip(t *testing.T) {
	raw, err := ToNullJSON([]string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("ToNullJSON() error = %v", err)
	}
	if !raw.Valid {
		t.Fatal("expected a valid JSON value")
	}

	got, err := FromNullStrings(raw)
	if err != nil {
		t.Fatalf("FromNullStrings() error = %v", err)
	}
	if want := []string{"Alice", "Bob"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FromNullStrings() = %v, want %v", got, want)
	}
}

func TestNullJSONNil(t *testing.T) {
	raw, err := ToNullJSON(nil)
	if err != nil {
		t.Fatalf("ToNullJSON() error = %v", err)
	}
	if raw.Valid {
		t.Error("nil should be stored as NULL")
	}

	got, err := FromNullStrings(pqtype.NullRawMessage{})
	if err != nil {
		t.Fatalf("FromNullStrings() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FromNullStrings(NULL) = %#v, want empty slice", got)
	}
}

func TestFromNullStringsRejectsObjects(t *testing.T) {
	_, err := FromNullStrings(pqtype.NullRawMessage{RawMessage: []byte(`{"a":1}`), Valid: true})
	if err == nil {
		t.Error("expected an error for a non-array value")
	}
}
