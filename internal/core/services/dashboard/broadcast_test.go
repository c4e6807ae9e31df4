package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntBroadcaster() *Broadcaster[int] {
	return NewBroadcaster(func(a, b int) bool { return a < b })
}

func TestBroadcaster_PrimeAndLatestWins(t *testing.T) {
	b := newIntBroadcaster()
	b.Publish(1)

	sub := b.Subscribe(true, nil)
	defer sub.Close()

	assert.Equal(t, 1, <-sub.C)

	b.Publish(2)
	b.Publish(3)
	assert.Equal(t, 3, <-sub.Updates())

	select {
	case v := <-sub.C:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestBroadcaster_DropsOlder(t *testing.T) {
	b := newIntBroadcaster()
	sub := b.Subscribe(false, nil)
	defer sub.Close()

	assert.True(t, b.Publish(5))
	assert.False(t, b.Publish(4))
	assert.True(t, b.Publish(5))

	v, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 5, <-sub.C)
}

func TestBroadcaster_UnprimedWaitsForNext(t *testing.T) {
	b := newIntBroadcaster()
	b.Publish(1)

	sub := b.Subscribe(false, nil)
	defer sub.Close()

	select {
	case <-sub.C:
		t.Fatal("unprimed subscriber received a value")
	default:
	}

	b.Publish(2)
	assert.Equal(t, 2, <-sub.C)
}

func TestBroadcaster_Close(t *testing.T) {
	b := newIntBroadcaster()
	closed := 0
	sub := b.Subscribe(false, func() { closed++ })
	assert.Equal(t, 1, b.Len())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, closed)
	_, open := <-sub.C
	assert.False(t, open)

	// Publishing after close must not panic.
	b.Publish(9)
}
