package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	gen := &Error{Kind: KindGeneration, Op: "extract", Err: errors.New("bad json")}
	assert.Equal(t, "Error processing request: bad json", gen.Text())

	tr := &Error{Kind: KindTranslation, Op: "translate", StatusCode: 403, Err: errors.New("forbidden")}
	assert.Equal(t, "Translation error: forbidden", tr.Text())
	assert.Equal(t, "translation: translate: status 403: forbidden", tr.Error())
}

func TestTimeout(t *testing.T) {
	assert.True(t, (&Error{Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}).Timeout())
	assert.False(t, (&Error{Err: errors.New("refused")}).Timeout())
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", &Error{Kind: KindGeneration, Err: errors.New("x")})
	ue, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindGeneration, ue.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
