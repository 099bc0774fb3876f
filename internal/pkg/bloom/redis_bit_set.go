package bloom

import (
	"context"
	"errors"
	"strconv"

	"companysearch/internal/pkg/redis"
)

// redisBitSet keeps every bit in one Redis string, driven by SETBIT/GETBIT
// scripts so a lookup round trip is atomic.
type redisBitSet struct {
	store redis.Cache
	key   string
	bits  uint
}

func (r *redisBitSet) args(offsets []uint) ([]any, error) {
	out := make([]any, len(offsets))
	for i, o := range offsets {
		if o >= r.bits {
			return nil, ErrTooLargeOffset
		}
		out[i] = strconv.FormatUint(uint64(o), 10)
	}
	return out, nil
}

// test treats a missing key as an empty filter.
func (r *redisBitSet) test(ctx context.Context, offsets []uint) (bool, error) {
	args, err := r.args(offsets)
	if err != nil {
		return false, err
	}
	resp, err := r.store.ScriptRun(ctx, getScript, []string{r.key}, args...)
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	v, ok := resp.(int64)
	return ok && v == 1, nil
}

func (r *redisBitSet) mark(ctx context.Context, offsets []uint) error {
	args, err := r.args(offsets)
	if err != nil {
		return err
	}
	if _, err = r.store.ScriptRun(ctx, setScript, []string{r.key}, args...); errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *redisBitSet) clear(ctx context.Context) error {
	_, err := r.store.Del(ctx, r.key)
	return err
}

func (r *redisBitSet) ttl(ctx context.Context, seconds int) (bool, error) {
	return r.store.Expire(ctx, r.key, seconds)
}
