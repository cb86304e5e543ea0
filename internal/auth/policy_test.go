package auth

import "testing"

func TestDomainPolicy_Allows(t *testing.T) {
	p := NewDomainPolicy(" twilio.com ", "@Example.org", "")

	allowed := []string{"x@twilio.com", "X@TWILIO.COM", "a.b@example.org"}
	denied := []string{"", "x@gmail.com", "x@eviltwilio.com", "x@twilio.com.evil", "@twilio.com", "twilio.com", "x@sub.twilio.com"}

	for _, e := range allowed {
		if !p.Allows(e) {
			t.Fatalf("expected %q allowed", e)
		}
	}
	for _, e := range denied {
		if p.Allows(e) {
			t.Fatalf("expected %q denied", e)
		}
	}
}

func TestDomainPolicy_EmptyDeniesAll(t *testing.T) {
	if NewDomainPolicy().Allows("x@twilio.com") {
		t.Fatalf("empty policy must deny")
	}
}
