package ledger

// Data is the immutable result of a load. Use a Builder to create one.
type Data struct {
	entries   []Entry
	opens     []OpenRecord
	closes    []CloseRecord
	pads      []PadRecord
	balances  []BalanceRecord
	notes     []NoteRecord
	documents []DocumentRecord
	events    []EventRecord
	queries   []QueryRecord
	prices    []PriceRecord
	postings  []PostingRecord
	metadata  []MetadataRecord
	options   Options

	postingIndex  map[int][]int
	metadataIndex map[int][]int
}

// Entries returns all entries in id order.
func (d *Data) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.copy()
	}
	return out
}

// Entry returns the entry with the given id.
func (d *Data) Entry(id int) (Entry, bool) {
	if id < 1 || id > len(d.entries) {
		return Entry{}, false
	}
	return d.entries[id-1].copy(), true
}

// Len returns the number of entries.
func (d *Data) Len() int {
	return len(d.entries)
}

func (d *Data) Opens() []OpenRecord {
	out := make([]OpenRecord, len(d.opens))
	for i, r := range d.opens {
		out[i] = r.copy()
	}
	return out
}

func (d *Data) Closes() []CloseRecord { return append([]CloseRecord(nil), d.closes...) }

func (d *Data) Pads() []PadRecord { return append([]PadRecord(nil), d.pads...) }

func (d *Data) Balances() []BalanceRecord {
	out := make([]BalanceRecord, len(d.balances))
	for i, r := range d.balances {
		out[i] = r.copy()
	}
	return out
}

func (d *Data) Notes() []NoteRecord { return append([]NoteRecord(nil), d.notes...) }

func (d *Data) Documents() []DocumentRecord { return append([]DocumentRecord(nil), d.documents...) }

func (d *Data) Events() []EventRecord { return append([]EventRecord(nil), d.events...) }

func (d *Data) Queries() []QueryRecord { return append([]QueryRecord(nil), d.queries...) }

func (d *Data) Prices() []PriceRecord { return append([]PriceRecord(nil), d.prices...) }

// Postings returns every posting in id order.
func (d *Data) Postings() []PostingRecord {
	out := make([]PostingRecord, len(d.postings))
	for i, p := range d.postings {
		out[i] = p.copy()
	}
	return out
}

// PostingsFor returns the postings of one entry in id order.
func (d *Data) PostingsFor(entryID int) []PostingRecord {
	idx := d.postingIndex[entryID]
	if len(idx) == 0 {
		return nil
	}
	out := make([]PostingRecord, len(idx))
	for i, j := range idx {
		out[i] = d.postings[j].copy()
	}
	return out
}

// Metadata returns every metadata record.
func (d *Data) Metadata() []MetadataRecord {
	return append([]MetadataRecord(nil), d.metadata...)
}

// MetadataFor returns the metadata of one entry, including that of its
// postings.
func (d *Data) MetadataFor(entryID int) []MetadataRecord {
	idx := d.metadataIndex[entryID]
	if len(idx) == 0 {
		return nil
	}
	out := make([]MetadataRecord, len(idx))
	for i, j := range idx {
		out[i] = d.metadata[j]
	}
	return out
}

// Options returns a copy of the ledger options.
func (d *Data) Options() Options {
	return d.options.Clone()
}

// Accounts returns every account named by an open record, in order of
// appearance.
func (d *Data) Accounts() []string {
	seen := make(map[string]bool, len(d.opens))
	var out []string
	for _, r := range d.opens {
		if !seen[r.Account] {
			seen[r.Account] = true
			out = append(out, r.Account)
		}
	}
	return out
}
