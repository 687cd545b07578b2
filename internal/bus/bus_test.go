package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInOrder(t *testing.T) {
	t.Parallel()

	b := New()
	var got []string
	b.Subscribe(func(m ProductSelected) { got = append(got, m.ProductName) })

	b.Publish(ProductSelected{ProductName: "GenWatt Diesel 10kW"})
	b.Publish(ProductSelected{ProductName: "GenWatt Diesel 200kW"})

	require.Equal(t, []string{"GenWatt Diesel 10kW", "GenWatt Diesel 200kW"}, got)
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := New()
	var a, c int
	b.Subscribe(func(ProductSelected) { a++ })
	b.Subscribe(func(ProductSelected) { c++ })

	b.Publish(ProductSelected{ProductID: "p1"})

	require.Equal(t, 1, a)
	require.Equal(t, 1, c)
}

func TestCancelledSubscriberIsInert(t *testing.T) {
	t.Parallel()

	b := New()
	var n int
	sub := b.Subscribe(func(ProductSelected) { n++ })

	b.Publish(ProductSelected{ProductID: "p1"})
	sub.Cancel()
	sub.Cancel() // repeat cancel is a no-op
	b.Publish(ProductSelected{ProductID: "p2"})

	require.Equal(t, 1, n)
}
