package core

import "testing"

func TestParseFilterComparisons(t *testing.T) {
	tests := []struct {
		expr     string
		metadata Metadata
		expected bool
	}{
		{"category:tech", Metadata{"category": StringValue("tech")}, true},
		{"category:tech", Metadata{"category": StringValue("science")}, false},
		{"category=tech", Metadata{"category": StringValue("tech")}, true},
		{"year>2020", Metadata{"year": IntValue(2023)}, true},
		{"year>2020", Metadata{"year": IntValue(2019)}, false},
		{"year>=2023", Metadata{"year": IntValue(2023)}, true},
		{"year<=2023", Metadata{"year": IntValue(2023)}, true},
		{"year<2020", Metadata{"year": IntValue(2019)}, true},
		{"category!=tech", Metadata{"category": StringValue("science")}, true},
		{"rating>4.0", Metadata{"rating": FloatValue(4.5)}, true},
		{"featured:true", Metadata{"featured": BoolValue(true)}, true},
		{`title:"hello world"`, Metadata{"title": StringValue("hello world")}, true},
		{"title:'quoted'", Metadata{"title": StringValue("quoted")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseFilter(tt.expr)
			if err != nil {
				t.Fatalf("ParseFilter(%q) failed: %v", tt.expr, err)
			}
			if got := EvaluateFilter(cond, tt.metadata); got != tt.expected {
				t.Errorf("filter %q on %v = %v, want %v", tt.expr, tt.metadata, got, tt.expected)
			}
		})
	}
}

func TestParseFilterCombinators(t *testing.T) {
	md := Metadata{
		"category": StringValue("tech"),
		"year":     IntValue(2023),
		"status":   StringValue("draft"),
	}

	tests := []struct {
		expr     string
		expected bool
	}{
		{"category:tech AND year>2020", true},
		{"category:tech AND year>2030", false},
		{"category:science OR year>2020", true},
		{"category:science OR year>2030", false},
		{"NOT category:science", true},
		{"NOT category:tech", false},
		{"(category:tech OR category:science) AND year>2020", true},
		{"category:tech AND (year<2000 OR status:draft)", true},
		{"status IN (draft, final)", true},
		{"status IN (final, published)", false},
		{"status NOT IN (final, published)", true},
		{"status NOT IN (draft)", false},
		{"year IN (2022, 2023)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseFilter(tt.expr)
			if err != nil {
				t.Fatalf("ParseFilter(%q) failed: %v", tt.expr, err)
			}
			if got := EvaluateFilter(cond, md); got != tt.expected {
				t.Errorf("filter %q = %v, want %v", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestParseFilterErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"noboperator",
		"status IN ()",
		"status IN draft, final",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if _, err := ParseFilter(expr); err == nil {
				t.Errorf("ParseFilter(%q) should have failed", expr)
			}
		})
	}
}

func TestParseFilterScalarTypes(t *testing.T) {
	cond, err := ParseFilter("count:42")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cond.Value.IntVal(); !ok {
		t.Errorf("bare integer literal should parse as integer, got kind %v", cond.Value.Kind())
	}

	cond, err = ParseFilter("rating:4.5")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cond.Value.FloatVal(); !ok {
		t.Errorf("decimal literal should parse as float, got kind %v", cond.Value.Kind())
	}

	cond, err = ParseFilter(`version:"42"`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cond.Value.StringVal(); !ok {
		t.Errorf("quoted literal should stay a string, got kind %v", cond.Value.Kind())
	}
}
