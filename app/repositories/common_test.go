package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetNextID(t *testing.T) {
	db := setupTestDB(t)

	t.Run("first id", func(t *testing.T) {
		var id int
		err := db.Update(func(txn *badger.Txn) error {
			var err error
			id, err = getNextID(txn, "test:seq")
			return err
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, id)
	})

	t.Run("sequential ids", func(t *testing.T) {
		var ids []int
		for i := 0; i < 3; i++ {
			err := db.Update(func(txn *badger.Txn) error {
				id, err := getNextID(txn, "test:seq2")
				ids = append(ids, id)
				return err
			})
			assert.NoError(t, err)
		}
		assert.Equal(t, []int{1, 2, 3}, ids)
	})

	t.Run("corrupt sequence", func(t *testing.T) {
		require.NoError(t, db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte("test:bad"), []byte("not-a-number"))
		}))
		err := db.Update(func(txn *badger.Txn) error {
			_, err := getNextID(txn, "test:bad")
			return err
		})
		assert.Error(t, err)
	})
}

func TestChildKeysDoNotOverlap(t *testing.T) {
	assert.NotEqual(t, string(commentPrefix(1)), string(commentPrefix(10))[:len(commentPrefix(1))])
	assert.Equal(t, "comment:1:0000000007", string(commentKey(1, 7)))
	assert.Equal(t, "tag:12:0000000003", string(tagKey(12, 3)))
}

func TestPrefixHelpers(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{"tag:1:01", "tag:1:02", "tag:10:01", "tag:2:01"} {
			if err := txn.Set([]byte(key), []byte("x")); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		assert.Equal(t, 2, countPrefix(txn, tagPrefix(1)))
		assert.Equal(t, 1, countPrefix(txn, tagPrefix(10)))
		assert.Equal(t, 0, countPrefix(txn, tagPrefix(3)))
		return nil
	}))

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		n, err := deletePrefix(txn, tagPrefix(1))
		assert.Equal(t, 2, n)
		return err
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		assert.Equal(t, 0, countPrefix(txn, tagPrefix(1)))
		assert.Equal(t, 1, countPrefix(txn, tagPrefix(10)))
		return nil
	}))
}

func TestMarshalEntity(t *testing.T) {
	type sample struct {
		Name string `json:"name"`
	}
	data, err := marshalEntity(sample{Name: "quill"})
	require.NoError(t, err)

	var out sample
	require.NoError(t, unmarshalEntity(data, &out))
	assert.Equal(t, "quill", out.Name)

	assert.Error(t, unmarshalEntity([]byte("{"), &out))
	_, err = marshalEntity(make(chan int))
	assert.Error(t, err)
}
