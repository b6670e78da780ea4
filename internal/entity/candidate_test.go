package entity

import "testing"

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"example.test", "http://example.test"},
		{"  https://www.example.test/login  ", "https://example.test/login"},
		{"http://example.test./a?b=1", "http://example.test/a?b=1"},
		{"http://WWW.Example.test/Path", "http://Example.test/Path"},
		{"http://www.com", "http://www.com"},
		{"http://[2001:db8::1]:8080/x", "http://[2001:db8::1]:8080/x"},
		{"www.evil.test/login?next=https://bank.test", "http://evil.test/login?next=https://bank.test"},
		{"HTTPS://www.evil.test", "https://evil.test"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeURLIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"www.paypal.com.secure-login.test/verify?id=1",
		"https://sub.evil.test/login/",
		"http://192.168.1.10:8080/a b",
		"::not a url::",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		if twice := NormalizeURL(once); twice != once {
			t.Fatalf("normalization not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeAllCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	got := NormalizeAll([]string{"a.test", "http://a.test", "www.a.test", " ", "b.test"})
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestClassificationQualifies(t *testing.T) {
	t.Parallel()

	p := func(v float64) *float64 { return &v }
	if !(Classification{Label: LabelPhishing, Probability: p(0.5)}).Qualifies(0.5) {
		t.Fatal("probability equal to threshold must qualify")
	}
	if (Classification{Label: LabelPhishing, Probability: p(0.4999999)}).Qualifies(0.5) {
		t.Fatal("probability below threshold must not qualify")
	}
	if !(Classification{Label: LabelPhishing}).Qualifies(0.9) {
		t.Fatal("label-only phishing must qualify")
	}
	if (Classification{Label: LabelBenign, Probability: p(0.99)}).Qualifies(0.5) {
		t.Fatal("benign label must never qualify")
	}
}

func TestStageRecordKeepsOrder(t *testing.T) {
	t.Parallel()

	rec := NewStageRecord(3)
	rec.Set("c", Features{"x": 1})
	rec.Set("a", Features{"x": 2})
	rec.Set("c", Features{"x": 3})

	urls := rec.URLs()
	if len(urls) != 2 || urls[0] != "c" || urls[1] != "a" {
		t.Fatalf("unexpected order: %v", urls)
	}
	row, _ := rec.Get("c")
	if row["x"] != 3 {
		t.Fatalf("expected replaced row, got %v", row)
	}
}
