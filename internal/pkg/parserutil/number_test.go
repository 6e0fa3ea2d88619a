package parserutil

import (
	"encoding/json"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`1.95`, 1.95, true},
		{`"2.10"`, 2.10, true},
		{`"+150"`, 150, true},
		{`-110`, -110, true},
		{`null`, 0, false},
		{`""`, 0, false},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if n.Value != tt.want || n.Valid != tt.valid {
			t.Errorf("Unmarshal(%s) = %+v, want {%v %v}", tt.in, n, tt.want, tt.valid)
		}
	}

	var n Number
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Error(`Unmarshal("abc") error = nil`)
	}
}

func TestNumberInStruct(t *testing.T) {
	var v struct {
		Hdp  Number `json:"hdp"`
		Home Number `json:"home"`
	}
	if err := json.Unmarshal([]byte(`{"home":"1.80"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Hdp.Ptr() != nil {
		t.Errorf("missing hdp Ptr() = %v, want nil", *v.Hdp.Ptr())
	}
	if p := v.Home.Ptr(); p == nil || *p != 1.80 {
		t.Errorf("home Ptr() = %v", p)
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`61300001`, "61300001"},
		{`"abc-1"`, "abc-1"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, id, tt.want)
		}
	}
}
