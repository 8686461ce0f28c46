package warehouse

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/db"
	"github.com/kailas-cloud/billmatch/internal/domain"
	"github.com/kailas-cloud/billmatch/internal/domain/bill"
	"github.com/kailas-cloud/billmatch/internal/logger"
)

// store is the consumer interface for the hash warehouse (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// HashRepo keeps each bill in a hash at {prefix}bill:{id} and reserves
// contract codes with SET NX at {prefix}contract:{code}.
type HashRepo struct {
	store  store
	prefix string
}

// NewHashRepo creates a hash-backed warehouse repository.
func NewHashRepo(s store, prefix string) *HashRepo {
	return &HashRepo{store: s, prefix: prefix}
}

func (r *HashRepo) billKey(id string) string { return r.prefix + "bill:" + id }

func (r *HashRepo) contractKey(code string) string { return r.prefix + "contract:" + code }

// Create stores a new bill. Fails with ErrAlreadyExists when the contract code is taken.
func (r *HashRepo) Create(ctx context.Context, b bill.Bill) error {
	ckey := r.contractKey(b.ContractCode())
	ok, err := r.store.SetNX(ctx, ckey, []byte(b.ID()))
	if err != nil {
		return fmt.Errorf("reserve %s: %w", ckey, err)
	}
	if !ok {
		return r.contractTaken(ctx, ckey, b.ContractCode())
	}

	key := r.billKey(b.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(&b)); err != nil {
		if delErr := r.store.Del(ctx, ckey); delErr != nil {
			logger.FromContext(ctx).Error("contract reservation not released",
				zap.String("key", ckey),
				zap.String("bill_id", b.ID()),
				zap.Error(delErr),
			)
		}
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// contractTaken builds the ErrAlreadyExists error, naming the holding bill
// when the reservation can still be read.
func (r *HashRepo) contractTaken(ctx context.Context, ckey, code string) error {
	holder, err := r.store.Get(ctx, ckey)
	switch {
	case err == nil:
		return fmt.Errorf("%w: contract code %s held by bill %s", domain.ErrAlreadyExists, code, holder)
	case !errors.Is(err, db.ErrKeyNotFound):
		logger.FromContext(ctx).Warn("contract holder lookup failed",
			zap.String("key", ckey), zap.Error(err))
	}
	return fmt.Errorf("%w: contract code %s", domain.ErrAlreadyExists, code)
}

// Get returns a bill by id.
func (r *HashRepo) Get(ctx context.Context, id string) (bill.Bill, error) {
	key := r.billKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return bill.Bill{}, fmt.Errorf("%w: bill %s", domain.ErrNotFound, id)
	}
	b, err := parseHashFields(m)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return b, nil
}

// Update overwrites an existing bill.
func (r *HashRepo) Update(ctx context.Context, b bill.Bill) error {
	key := r.billKey(b.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("%w: bill %s", domain.ErrNotFound, b.ID())
	}
	if err := r.store.HSet(ctx, key, buildHashFields(&b)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// ListByStatus returns bills in the given status, or every bill when status is nil.
func (r *HashRepo) ListByStatus(ctx context.Context, status *bill.Status) ([]bill.Bill, error) {
	keys, err := r.store.Scan(ctx, r.billKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan bills: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}

	out := make([]bill.Bill, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		if status != nil && bill.Status(m[fieldStatus]) != *status {
			continue
		}
		b, err := parseHashFields(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, b)
	}
	return out, nil
}
