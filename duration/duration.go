package duration

import (
	"math/big"
	"sort"
	"strings"

	"github.com/jsphweid/kernprep/model"
	"github.com/pkg/errors"
)

var ErrUnacceptableDuration = errors.New("unacceptable duration")

// Whitelist is an immutable set of quarter lengths. Membership is exact.
type Whitelist struct {
	set    map[string]struct{}
	values []*big.Rat
}

// ParseWhitelist accepts decimals ("0.25") and fractions ("3/2").
func ParseWhitelist(values []string) (Whitelist, error) {
	var rats []*big.Rat
	for _, v := range values {
		r, ok := new(big.Rat).SetString(strings.TrimSpace(v))
		if !ok {
			return Whitelist{}, errors.Errorf("could not parse duration %q", v)
		}
		rats = append(rats, r)
	}
	return NewWhitelist(rats...)
}

func NewWhitelist(values ...*big.Rat) (Whitelist, error) {
	if len(values) == 0 {
		return Whitelist{}, errors.New("duration whitelist is empty")
	}
	w := Whitelist{set: make(map[string]struct{})}
	for _, v := range values {
		if v.Sign() <= 0 {
			return Whitelist{}, errors.Errorf("duration %s is not positive", v.RatString())
		}
		key := v.RatString()
		if _, ok := w.set[key]; ok {
			continue
		}
		w.set[key] = struct{}{}
		w.values = append(w.values, new(big.Rat).Set(v))
	}
	sort.Slice(w.values, func(i, j int) bool {
		return w.values[i].Cmp(w.values[j]) < 0
	})
	return w, nil
}

func MustParseWhitelist(values []string) Whitelist {
	w, err := ParseWhitelist(values)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Whitelist) Contains(d *big.Rat) bool {
	if d == nil {
		return false
	}
	_, ok := w.set[d.RatString()]
	return ok
}

func (w Whitelist) Values() []*big.Rat {
	res := make([]*big.Rat, len(w.values))
	for i, v := range w.values {
		res[i] = new(big.Rat).Set(v)
	}
	return res
}

func (w Whitelist) String() string {
	parts := make([]string, len(w.values))
	for i, v := range w.values {
		parts[i] = v.RatString()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// IsAcceptable reports whether every note, chord and rest duration in the
// score is in the whitelist. An empty score is acceptable.
func IsAcceptable(s *model.Score, w Whitelist) bool {
	_, ok := FirstUnacceptable(s, w)
	return !ok
}

// FirstUnacceptable returns the first event, in chronological order, whose
// duration is not in the whitelist.
func FirstUnacceptable(s *model.Score, w Whitelist) (model.Event, bool) {
	for _, evt := range s.NotesAndRests() {
		if !w.Contains(evt.Duration()) {
			return evt, true
		}
	}
	return nil, false
}
