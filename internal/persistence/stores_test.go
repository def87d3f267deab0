package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/scancart-backend/internal/cart"
	"github.com/angelmondragon/scancart-backend/pkg/db/models"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/scancart-backend/pkg/redis"
)

type fakeRedisKV struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedisKV() *fakeRedisKV {
	return &fakeRedisKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedisKV) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (f *fakeRedisKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedisKV) CartKey(name string) string {
	return "scancart:cart:" + name
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedisKV()
	store, err := NewRedisStore(kv)
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, found, "redis.Nil means missing")

	require.NoError(t, store.Set(ctx, "cart", "[]"))
	assert.Equal(t, "[]", kv.data["scancart:cart:cart"])
	assert.Zero(t, kv.ttls["scancart:cart:cart"])

	v, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)

	kv.err = errors.New("i/o timeout")
	_, _, err = store.Get(ctx, "cart")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "cart", "[]"))
}

func newSQLiteDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CartBlob{}))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestSQLStoreUpsert(t *testing.T) {
	ctx := context.Background()
	conn := newSQLiteDB(t, "sqlstore_upsert")
	store, err := NewSQLStore(conn)
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "cart", `[{"name":"Milk","image":null,"quantity":1}]`))
	require.NoError(t, store.Set(ctx, "cart", `[{"name":"Milk","image":null,"quantity":2}]`))

	v, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"name":"Milk","image":null,"quantity":2}]`, v)

	var count int64
	require.NoError(t, conn.Model(&models.CartBlob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "upsert keeps one row per key")
}

func TestAdapterRoundTripOverSQLStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLStore(newSQLiteDB(t, "sqlstore_roundtrip"))
	require.NoError(t, err)
	a, err := NewAdapter(store, "cart", logger.Nop())
	require.NoError(t, err)

	img := "http://x/milk.png"
	saved := []cart.Line{{Name: "Milk", Image: &img, Quantity: 2}, {Name: "Bread", Quantity: 1}}
	require.NoError(t, a.Save(ctx, saved))
	assert.Equal(t, saved, a.Load(ctx))
}

func TestStoreConstructorsValidate(t *testing.T) {
	_, err := NewRedisStore(nil)
	assert.Error(t, err)
	_, err = NewSQLStore(nil)
	assert.Error(t, err)
}
