package lifecycle_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prismworks/prism/pkg/lifecycle"
)

func TestCloseReverseOrder(t *testing.T) {
	c := lifecycle.New(nil)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		c.Defer(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	if err := c.Close(time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"third", "second", "first"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("expected close order %v, got %v", want, order)
		}
	}
}

func TestCloseReportsFirstError(t *testing.T) {
	c := lifecycle.New(nil)

	ran := false
	c.Defer("store", func() error {
		ran = true
		return nil
	})
	c.Defer("server", func() error {
		return errors.New("port busy")
	})

	err := c.Close(time.Second)
	if err == nil {
		t.Fatal("expected close error")
	}
	if !strings.Contains(err.Error(), "server") {
		t.Fatalf("expected error to name the resource, got %v", err)
	}
	if !ran {
		t.Fatal("expected remaining closers to run after a failure")
	}
}

func TestCloseTimeout(t *testing.T) {
	c := lifecycle.New(nil)

	block := make(chan struct{})
	defer close(block)
	c.Defer("stuck", func() error {
		<-block
		return nil
	})

	if err := c.Close(20 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestCloseCancelsContext(t *testing.T) {
	c := lifecycle.New(nil)

	if err := c.Context().Err(); err != nil {
		t.Fatalf("context cancelled before close: %v", err)
	}

	if err := c.Close(time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-c.Context().Done():
	default:
		t.Fatal("expected context cancelled after close")
	}
}
