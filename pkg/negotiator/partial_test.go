package negotiator

import (
	"reflect"
	"testing"
)

func TestPick(t *testing.T) {
	v := map[string]any{
		"c": 2,
		"d": 3,
		"e": map[string]any{"f": 5, "g": 6},
	}
	tests := []struct {
		name  string
		paths [][]string
		want  any
		ok    bool
	}{
		{"single", [][]string{{"c"}}, map[string]any{"c": 2}, true},
		{"deep", [][]string{{"e", "g"}}, map[string]any{"e": map[string]any{"g": 6}}, true},
		{"whole wins over nested", [][]string{{"e", "g"}, {"e"}}, map[string]any{"e": map[string]any{"f": 5, "g": 6}}, true},
		{"missing", [][]string{{"z"}}, nil, false},
		{"through scalar", [][]string{{"c", "x"}}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pick(v, tt.paths)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pick() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
	if _, ok := pick("scalar", [][]string{{"a"}}); ok {
		t.Error("pick on scalar reported a match")
	}
}

func TestDrop(t *testing.T) {
	v := map[string]any{"c": 2, "e": map[string]any{"f": 5, "g": 6}}

	got := drop(v, [][]string{{"e", "f"}, {"c"}})
	want := map[string]any{"e": map[string]any{"g": 6}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("drop() = %v, want %v", got, want)
	}
	if len(v) != 2 || len(v["e"].(map[string]any)) != 2 {
		t.Errorf("drop() mutated its input: %v", v)
	}
	if got := drop(7, [][]string{{"x"}}); got != 7 {
		t.Errorf("drop(scalar) = %v", got)
	}
}

func TestSelector(t *testing.T) {
	s := newSelector([]string{"a", "b.c", "b.d.e", ""})
	if !s.names("a") || !s.names("b") || s.names("c") || s.names("") {
		t.Errorf("selector = %+v", s)
	}
	if !reflect.DeepEqual(s.nested["b"], [][]string{{"c"}, {"d", "e"}}) {
		t.Errorf("nested[b] = %v", s.nested["b"])
	}
}
