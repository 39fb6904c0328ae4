package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/ledger/ledgertest/assert"
)

// TestSuite runs the same storage checks against any CacheableKVStore
// implementation. Packages providing a store call its methods from their
// own tests with a matching constructor.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns an empty store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite testing stores created by given constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that cache layers expose the data of the layer below and
// keep their own writes until written.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("sell"), []byte("mint")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	k2, v2 := []byte("buy"), []byte("amount")
	s.AssertGetHas(t, cache, k2, nil, false)
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// discarded changes never reach the base
	k3, v3 := []byte("vault"), []byte("empty")
	c2 := base.CacheWrap()
	assert.Nil(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	c3 := base.CacheWrap()
	assert.Nil(t, c3.Delete(k))
	assert.Nil(t, c3.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
	s.AssertGetHas(t, base, k3, nil, false)
}

// CacheConflicts checks overwriting and deleting values of the layer
// below.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := randKeys(4, 16)
	vs := randKeys(8, 40)

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:      []Op{SetOp(ks[1], vs[5]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentQueries: []Model{{ks[1], vs[1]}, {ks[2], vs[2]}, {ks[3], nil}},
			childQueries:  []Model{{ks[1], vs[5]}, {ks[2], nil}, {ks[3], vs[7]}},
		},
		"delete and set again": {
			parentOps:     []Op{SetOp(ks[0], vs[0])},
			childOps:      []Op{DelOp(ks[0]), SetOp(ks[0], vs[3])},
			parentQueries: []Model{{ks[0], vs[0]}},
			childQueries:  []Model{{ks[0], vs[3]}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// FuzzIterator checks ranged iteration over a cache merged with its parent,
// including deleted keys.
func (s *TestSuite) FuzzIterator(t *testing.T) {
	const size = 40

	toSet := randModels(size, 8, 40)
	toDel := randModels(10, 8, 40)
	expect := sortModels(toSet)
	ops := append(makeSetOps(toSet...), makeDelOps(toDel...)...)

	parentSet := randModels(size, 8, 40)
	parentOps := makeSetOps(parentSet...)
	// hide a few parent values in the child
	hidden := parentSet[:5]
	both := sortModels(append(append([]Model{}, toSet...), parentSet[5:]...))

	cases := map[string]struct {
		pre     []Op
		child   []Op
		queries []rangeQuery
	}{
		"child with empty parent": {
			child: ops,
			queries: []rangeQuery{
				{nil, nil, false, expect},
				{expect[10].Key, nil, false, expect[10:]},
				{nil, expect[size-8].Key, false, expect[:size-8]},
				{expect[17].Key, expect[28].Key, false, expect[17:28]},
				{nil, nil, true, reverse(expect)},
				{expect[34].Key, nil, true, reverse(expect[34:])},
				{nil, expect[19].Key, true, reverse(expect[:19])},
				{expect[6].Key, expect[26].Key, true, reverse(expect[6:26])},
			},
		},
		"child merged with parent": {
			pre:   parentOps,
			child: append(ops, makeDelOps(hidden...)...),
			queries: []rangeQuery{
				{nil, nil, false, both},
				{both[10].Key, nil, false, both[10:]},
				{both[17].Key, both[28].Key, false, both[17:28]},
				{nil, nil, true, reverse(both)},
				{nil, both[19].Key, true, reverse(both[:19])},
				{both[6].Key, both[26].Key, true, reverse(both[6:26])},
			},
		},
		"range without keys": {
			child: makeSetOps(Model{Key: []byte{5}, Value: []byte{1}}),
			queries: []rangeQuery{
				{[]byte{6}, []byte{9}, false, nil},
				{[]byte{1}, []byte{5}, true, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.pre {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			for _, q := range tc.queries {
				q.check(t, child)
			}
		})
	}
}

// AssertGetHas checks both the value and the existence of given key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(val, got) {
		t.Fatalf("key %X: want %X, got %X", key, val, got)
	}
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func (q rangeQuery) check(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()

	var (
		it  Iterator
		err error
	)
	if q.reverse {
		it, err = kv.ReverseIterator(q.start, q.end)
	} else {
		it, err = kv.Iterator(q.start, q.end)
	}
	assert.Nil(t, err)
	defer it.Close()

	var got []Model
	for ; it.Valid(); assert.Nil(t, it.Next()) {
		got = append(got, Model{Key: it.Key(), Value: it.Value()})
	}
	if len(got) != len(q.expected) {
		t.Fatalf("want %d models, got %d", len(q.expected), len(got))
	}
	for i := range got {
		if !bytes.Equal(q.expected[i].Key, got[i].Key) {
			t.Fatalf("model %d: want key %X, got %X", i, q.expected[i].Key, got[i].Key)
		}
		if !bytes.Equal(q.expected[i].Value, got[i].Value) {
			t.Fatalf("model %d: want value %X, got %X", i, q.expected[i].Value, got[i].Value)
		}
	}
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	if _, err := rand.Read(res); err != nil {
		panic(err)
	}
	return res
}

func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		res[i] = randBytes(size)
	}
	return res
}

func randModels(count, keySize, valueSize int) []Model {
	models := make([]Model, count)
	for i := range models {
		models[i] = Model{Key: randBytes(keySize), Value: randBytes(valueSize)}
	}
	return models
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func makeSetOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func makeDelOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
