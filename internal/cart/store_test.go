package cart

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

type recordingPersister struct {
	mu    sync.Mutex
	saves [][]Line
	err   error
}

func (p *recordingPersister) Save(ctx context.Context, lines []Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, copyLines(lines))
	return p.err
}

func (p *recordingPersister) last() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []Event
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, event.(Event))
	return p.err
}

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T, initial ...Line) (*Store, *recordingPersister) {
	t.Helper()
	persister := &recordingPersister{}
	store, err := NewStore(Config{
		UnitPrice: decimal.NewFromInt(2),
		Currency:  "EUR",
		Initial:   initial,
		Persister: persister,
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)
	return store, persister
}

func names(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Name
	}
	return out
}

func TestMergeAppendsNewProductPreservingOrder(t *testing.T) {
	store, persister := newTestStore(t, Line{Name: "Bread", Quantity: 3})

	snap := store.Merge(context.Background(), catalog.Product{Name: "Milk"})

	assert.Equal(t, []string{"Bread", "Milk"}, names(snap.Lines))
	assert.Equal(t, 1, snap.Lines[1].Quantity)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	assert.Equal(t, snap.Lines, persister.last())
}

func TestMergeIncrementsExistingLineInPlace(t *testing.T) {
	store, _ := newTestStore(t,
		Line{Name: "Milk", Image: strPtr("http://x/milk.png"), Quantity: 1},
		Line{Name: "Bread", Quantity: 1},
	)

	snap := store.Merge(context.Background(), catalog.Product{Name: "Milk", Image: strPtr("http://x/other.png")})

	assert.Equal(t, []string{"Milk", "Bread"}, names(snap.Lines))
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	require.NotNil(t, snap.Lines[0].Image)
	assert.Equal(t, "http://x/milk.png", *snap.Lines[0].Image, "image comes from first insertion")
}

func TestAdjustToZeroRemovesLineAndShiftsIndices(t *testing.T) {
	store, _ := newTestStore(t,
		Line{Name: "A", Quantity: 1},
		Line{Name: "B", Quantity: 1},
		Line{Name: "C", Quantity: 4},
	)

	snap, err := store.AdjustQuantity(context.Background(), 1, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, names(snap.Lines))

	snap, err = store.AdjustQuantity(context.Background(), 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Lines[1].Quantity, "C is now at index 1")
}

func TestAdjustOutOfRangeFailsWithoutMutation(t *testing.T) {
	store, persister := newTestStore(t, Line{Name: "A", Quantity: 1})

	for _, idx := range []int{-1, 1, 5} {
		_, err := store.AdjustQuantity(context.Background(), idx, 1)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	assert.Empty(t, persister.saves)
	assert.Equal(t, 1, store.Lines()[0].Quantity)
}

func TestAdjustLargeDeltaSaturatesInsteadOfRemoving(t *testing.T) {
	ctx := context.Background()
	store, persister := newTestStore(t)
	store.Merge(ctx, catalog.Product{Name: "Milk"})

	snap, err := store.AdjustQuantity(ctx, 0, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, math.MaxInt, snap.Lines[0].Quantity)

	snap = store.Merge(ctx, catalog.Product{Name: "Milk"})
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, math.MaxInt, snap.Lines[0].Quantity)
	assert.Equal(t, math.MaxInt, persister.last()[0].Quantity)
}

func TestAdjustZeroDeltaKeepsLineAndPersists(t *testing.T) {
	store, persister := newTestStore(t, Line{Name: "A", Quantity: 2})

	snap, err := store.AdjustQuantity(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Len(t, persister.saves, 1)
}

func TestTotal(t *testing.T) {
	store, _ := newTestStore(t)
	assert.True(t, store.Total().Equal(decimal.Zero))

	store, _ = newTestStore(t, Line{Name: "A", Quantity: 2}, Line{Name: "B", Quantity: 3})
	assert.True(t, store.Total().Equal(decimal.NewFromInt(10)), "got %s", store.Total())
}

func TestMilkScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	milk := catalog.Product{Name: "Milk", Image: strPtr("http://x/milk.png")}

	snap := store.Merge(ctx, milk)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, Line{Name: "Milk", Image: strPtr("http://x/milk.png"), Quantity: 1}, snap.Lines[0])
	assert.Equal(t, "2", snap.Total.String())

	snap = store.Merge(ctx, milk)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, "4", snap.Total.String())

	_, err := store.AdjustQuantity(ctx, 0, 1)
	require.NoError(t, err)
	snap, err = store.AdjustQuantity(ctx, 0, -3)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.True(t, snap.Total.IsZero())
}

func TestSentinelProductIsMergedLikeAnyOther(t *testing.T) {
	store, _ := newTestStore(t)
	snap := store.Merge(context.Background(), catalog.Product{Name: "product not found"})
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, Line{Name: "product not found", Quantity: 1}, snap.Lines[0])
}

func TestEveryMutationPersistsFullCartInOrder(t *testing.T) {
	ctx := context.Background()
	store, persister := newTestStore(t)

	store.Merge(ctx, catalog.Product{Name: "A"})
	store.Merge(ctx, catalog.Product{Name: "B"})
	_, err := store.AdjustQuantity(ctx, 0, -1)
	require.NoError(t, err)
	store.Clear(ctx)

	require.Len(t, persister.saves, 4)
	assert.Equal(t, []string{"A"}, names(persister.saves[0]))
	assert.Equal(t, []string{"A", "B"}, names(persister.saves[1]))
	assert.Equal(t, []string{"B"}, names(persister.saves[2]))
	assert.NotNil(t, persister.saves[3])
	assert.Empty(t, persister.saves[3])
}

func TestPersistFailureDoesNotSurface(t *testing.T) {
	store, persister := newTestStore(t)
	persister.err = errors.New("disk full")

	snap := store.Merge(context.Background(), catalog.Product{Name: "A"})
	assert.Len(t, snap.Lines, 1)
	assert.Len(t, store.Lines(), 1)
}

func TestLinesReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t, Line{Name: "A", Image: strPtr("img"), Quantity: 1})
	lines := store.Lines()
	lines[0].Quantity = 99
	*lines[0].Image = "changed"

	fresh := store.Lines()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, "img", *fresh[0].Image)
}

func TestEventsPublishedInMutationOrder(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	store, err := NewStore(Config{
		Key:       "till-1",
		UnitPrice: decimal.NewFromInt(2),
		Persister: &recordingPersister{},
		Publisher: pub,
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)

	store.Merge(ctx, catalog.Product{Name: "Milk"})
	store.Merge(ctx, catalog.Product{Name: "Milk"})
	_, err = store.AdjustQuantity(ctx, 0, 1)
	require.NoError(t, err)
	_, err = store.AdjustQuantity(ctx, 0, -5)
	require.NoError(t, err)
	store.Close()
	store.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.events, 4)
	assert.Equal(t, []enums.CartEventType{
		enums.CartEventLineAdded,
		enums.CartEventLineIncremented,
		enums.CartEventQuantityAdjusted,
		enums.CartEventLineRemoved,
	}, []enums.CartEventType{pub.events[0].Type, pub.events[1].Type, pub.events[2].Type, pub.events[3].Type})
	assert.Equal(t, "till-1", pub.keys[0])
	assert.Equal(t, 3, pub.events[2].Quantity)
	assert.Equal(t, "6", pub.events[2].Total.String())
	assert.Equal(t, 0, pub.events[3].LineCount)

	// mutations after Close must not panic on the closed event channel
	store.Merge(ctx, catalog.Product{Name: "Bread"})
}

func TestConcurrentMergesKeepOneLinePerName(t *testing.T) {
	store, _ := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Merge(context.Background(), catalog.Product{Name: "Milk"})
		}()
	}
	wg.Wait()

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 50, lines[0].Quantity)
	assert.Equal(t, "100", store.Total().String())
}

func TestNewStoreValidates(t *testing.T) {
	_, err := NewStore(Config{Logger: logger.Nop()})
	assert.Error(t, err)
	_, err = NewStore(Config{Persister: &recordingPersister{}})
	assert.Error(t, err)
	_, err = NewStore(Config{Persister: &recordingPersister{}, Logger: logger.Nop(), UnitPrice: decimal.NewFromInt(-1)})
	assert.Error(t, err)
}
