package pycompat

const (
	setMinSize     = 8
	setLinearProbe = 9
	perturbShift   = 5
)

type setEntry struct {
	hash  int64
	value string
	used  bool
}

// Ordering enumerates strings in the order a CPython 3.11 set built from them
// would iterate.
type Ordering struct {
	keys Keys
}

// NewOrdering returns an Ordering for the given hash keys.
func NewOrdering(keys Keys) *Ordering {
	return &Ordering{keys: keys}
}

// Keys returns the hash keys of o.
func (o *Ordering) Keys() Keys {
	return o.keys
}

// Order inserts values into a simulated set in the given order and returns
// the set's iteration order. Duplicates are dropped.
func (o *Ordering) Order(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	s := newSimSet()
	for _, v := range values {
		s.add(Hash(o.keys, v), v)
	}
	return s.items()
}

// simSet mirrors the open-addressing table of Objects/setobject.c.
type simSet struct {
	table []setEntry
	fill  int
	used  int
}

func newSimSet() *simSet {
	return &simSet{table: make([]setEntry, setMinSize)}
}

func (s *simSet) mask() uint64 {
	return uint64(len(s.table) - 1)
}

func (s *simSet) add(hash int64, value string) {
	mask := s.mask()
	perturb := uint64(hash)
	i := uint64(hash) & mask

	for {
		e := &s.table[i]
		if !e.used {
			break
		}
		if e.hash == hash && e.value == value {
			return
		}

		if i+setLinearProbe <= mask {
			stop := false
			for j := uint64(1); j <= setLinearProbe; j++ {
				e = &s.table[i+j]
				if !e.used {
					i += j
					stop = true
					break
				}
				if e.hash == hash && e.value == value {
					return
				}
			}
			if stop {
				break
			}
		}

		perturb >>= perturbShift
		i = (i*5 + 1 + perturb) & mask
	}

	s.table[i] = setEntry{hash: hash, value: value, used: true}
	s.fill++
	s.used++

	if uint64(s.fill)*5 >= mask*3 {
		s.resize()
	}
}

func (s *simSet) resize() {
	minUsed := s.used * 4
	if s.used > 50000 {
		minUsed = s.used * 2
	}

	size := setMinSize
	for size <= minUsed {
		size <<= 1
	}

	old := s.table
	s.table = make([]setEntry, size)
	s.fill = s.used

	for _, e := range old {
		if e.used {
			s.insertClean(e)
		}
	}
}

// insertClean places e in a table known to contain neither e nor dummies.
func (s *simSet) insertClean(e setEntry) {
	mask := s.mask()
	perturb := uint64(e.hash)
	i := uint64(e.hash) & mask

	for {
		if !s.table[i].used {
			s.table[i] = e
			return
		}
		if i+setLinearProbe <= mask {
			for j := uint64(1); j <= setLinearProbe; j++ {
				if !s.table[i+j].used {
					s.table[i+j] = e
					return
				}
			}
		}
		perturb >>= perturbShift
		i = (i*5 + 1 + perturb) & mask
	}
}

func (s *simSet) items() []string {
	out := make([]string, 0, s.used)
	for _, e := range s.table {
		if e.used {
			out = append(out, e.value)
		}
	}
	return out
}
