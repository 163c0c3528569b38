package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/yourusername/pulsar"
)

func TestJarFromHeaderParsesMultipleCookies(t *testing.T) {
	header := http.Header{}
	header.Set("Cookie", "a=1; b=2 ; c=")
	jar := jarFromHeader(header)

	if v, ok := jar.Get("a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if v, ok := jar.Get("b"); !ok || v != "2" {
		t.Errorf("b = %q, %v", v, ok)
	}
	if v, ok := jar.Get("c"); !ok || v != "" {
		t.Errorf("c = %q, %v", v, ok)
	}
}

func TestJarFromHeaderEmpty(t *testing.T) {
	jar := jarFromHeader(http.Header{})
	if len(jar) != 0 {
		t.Errorf("expected empty jar, got %v", jar)
	}
}

func TestCookiesStashesRequestJar(t *testing.T) {
	header := http.Header{}
	header.Set("Cookie", "session=xyz")
	u, _ := url.Parse("/")
	req := pulsar.NewRequest("GET", u, "HTTP/1.1", header, nil)

	var seen Jar
	next := pulsar.BuildNext(pulsar.HandlerFunc(func(r *pulsar.Request) (*pulsar.Response, error) {
		jar, ok := pulsar.Get[Jar](r.Extensions())
		if !ok {
			t.Fatal("expected jar stashed on request extensions")
		}
		seen = jar
		return pulsar.Empty(), nil
	}), nil)

	if _, err := Cookies().Handle(req, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := seen.Get("session"); !ok || v != "xyz" {
		t.Errorf("session = %q, %v", v, ok)
	}
}

func TestCookiesFlushesResponseJarAsSetCookie(t *testing.T) {
	u, _ := url.Parse("/")
	req := pulsar.NewRequest("GET", u, "HTTP/1.1", http.Header{}, nil)

	next := pulsar.BuildNext(pulsar.HandlerFunc(func(r *pulsar.Request) (*pulsar.Response, error) {
		resp := pulsar.Empty()
		pulsar.Set(resp.Extensions(), Jar{"greeting": "hello"})
		return resp, nil
	}), nil)

	resp, err := Cookies().Handle(req, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, v := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(v, "greeting=hello") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Set-Cookie for greeting, got %v", resp.Header.Values("Set-Cookie"))
	}
}
