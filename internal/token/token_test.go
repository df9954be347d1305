package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subject struct {
	id        uint64
	confirmed bool
}

func (s subject) TokenID() uint64      { return s.id }
func (s subject) TokenConfirmed() bool { return s.confirmed }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestIssuer(c *clock) *Issuer {
	return NewIssuer("test-secret", 72*time.Hour).WithClock(c.now)
}

func TestIssuer_RoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)
	user := subject{id: 7}

	tok := issuer.Make(user)
	require.True(t, issuer.Check(user, tok))

	ts, digest, ok := strings.Cut(tok, "-")
	require.True(t, ok)
	assert.NotEmpty(t, ts)
	assert.Len(t, digest, 32)
}

func TestIssuer_ConfirmationChangeInvalidates(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)

	user := subject{id: 7}
	tok := issuer.Make(user)

	user.confirmed = true
	assert.False(t, issuer.Check(user, tok))
}

func TestIssuer_OtherUser(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)

	tok := issuer.Make(subject{id: 1})
	assert.False(t, issuer.Check(subject{id: 2}, tok))
	assert.False(t, issuer.Check(subject{id: 11}, tok))
}

func TestIssuer_Expiry(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)
	user := subject{id: 3}
	tok := issuer.Make(user)

	c.t = c.t.Add(72 * time.Hour)
	assert.True(t, issuer.Check(user, tok))

	c.t = c.t.Add(time.Second)
	assert.False(t, issuer.Check(user, tok))
}

func TestIssuer_FutureTimestamp(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)
	user := subject{id: 3}
	tok := issuer.Make(user)

	c.t = c.t.Add(-time.Hour)
	assert.False(t, issuer.Check(user, tok))
}

func TestIssuer_DifferentSecret(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	user := subject{id: 5}
	tok := newTestIssuer(c).Make(user)

	other := NewIssuer("another-secret", 72*time.Hour).WithClock(c.now)
	assert.False(t, other.Check(user, tok))
}

func TestIssuer_MalformedTokens(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(c)
	user := subject{id: 5}
	valid := issuer.Make(user)

	for _, tok := range []string{
		"",
		"-",
		"nohyphen",
		"zz!-abcdef",
		"-" + strings.Repeat("a", 32),
		valid + "x",
		strings.ToUpper(valid),
	} {
		assert.False(t, issuer.Check(user, tok), "token %q", tok)
	}
	assert.False(t, issuer.Check(nil, valid))
}

func TestUIDRoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, 1 << 40} {
		got, err := DecodeUID(EncodeUID(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	assert.Equal(t, "MQ", EncodeUID(1))
}

func TestDecodeUID_Invalid(t *testing.T) {
	for _, uid := range []string{"", "!!!", "YWJj", "MA", "LTE"} {
		_, err := DecodeUID(uid)
		assert.ErrorIs(t, err, ErrInvalidUID, uid)
	}
}
