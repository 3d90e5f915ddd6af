package ledger

import "fmt"

// Builder assembles a Data value. Entry and posting ids are assigned by the
// builder, starting at 1 and increasing by one in insertion order.
//
// Adding a detail record for an entry id the builder has not issued is a
// programming error and panics.
type Builder struct {
	data *Data
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{data: &Data{options: NewOptions()}}
}

// AddEntry assigns the next entry id to e, stores it and returns the id.
func (b *Builder) AddEntry(e Entry) int {
	e.ID = len(b.data.entries) + 1
	b.data.entries = append(b.data.entries, e.copy())
	return e.ID
}

// NextEntryID returns the id the next AddEntry call will assign.
func (b *Builder) NextEntryID() int {
	return len(b.data.entries) + 1
}

func (b *Builder) AddOpen(r OpenRecord) {
	b.mustHaveEntry("open", r.EntryID)
	b.data.opens = append(b.data.opens, r.copy())
}

func (b *Builder) AddClose(r CloseRecord) {
	b.mustHaveEntry("close", r.EntryID)
	b.data.closes = append(b.data.closes, r)
}

func (b *Builder) AddPad(r PadRecord) {
	b.mustHaveEntry("pad", r.EntryID)
	b.data.pads = append(b.data.pads, r)
}

func (b *Builder) AddBalance(r BalanceRecord) {
	b.mustHaveEntry("balance", r.EntryID)
	b.data.balances = append(b.data.balances, r.copy())
}

func (b *Builder) AddNote(r NoteRecord) {
	b.mustHaveEntry("note", r.EntryID)
	b.data.notes = append(b.data.notes, r)
}

func (b *Builder) AddDocument(r DocumentRecord) {
	b.mustHaveEntry("document", r.EntryID)
	b.data.documents = append(b.data.documents, r)
}

func (b *Builder) AddEvent(r EventRecord) {
	b.mustHaveEntry("event", r.EntryID)
	b.data.events = append(b.data.events, r)
}

func (b *Builder) AddQuery(r QueryRecord) {
	b.mustHaveEntry("query", r.EntryID)
	b.data.queries = append(b.data.queries, r)
}

func (b *Builder) AddPrice(r PriceRecord) {
	b.mustHaveEntry("price", r.EntryID)
	b.data.prices = append(b.data.prices, r)
}

// AddPosting assigns the next posting id to p, stores it and returns the id.
func (b *Builder) AddPosting(p PostingRecord) int {
	b.mustHaveEntry("posting", p.EntryID)
	p.ID = len(b.data.postings) + 1
	b.data.postings = append(b.data.postings, p.copy())
	return p.ID
}

// AddMetadata stores a metadata pair. A non-zero PostingID must have been
// issued by AddPosting.
func (b *Builder) AddMetadata(r MetadataRecord) {
	b.mustHaveEntry("metadata", r.EntryID)
	if r.PostingID < 0 || r.PostingID > len(b.data.postings) {
		panic(fmt.Sprintf("ledger: metadata record for unknown posting %d", r.PostingID))
	}
	b.data.metadata = append(b.data.metadata, r)
}

// SetOptions replaces the ledger options.
func (b *Builder) SetOptions(o Options) {
	b.data.options = o.Clone()
}

// Build returns the assembled data. The builder must not be used afterwards.
func (b *Builder) Build() *Data {
	data := b.data
	b.data = nil

	data.postingIndex = make(map[int][]int)
	for i, p := range data.postings {
		data.postingIndex[p.EntryID] = append(data.postingIndex[p.EntryID], i)
	}
	data.metadataIndex = make(map[int][]int)
	for i, m := range data.metadata {
		data.metadataIndex[m.EntryID] = append(data.metadataIndex[m.EntryID], i)
	}
	return data
}

func (b *Builder) mustHaveEntry(kind string, id int) {
	if id < 1 || id > len(b.data.entries) {
		panic(fmt.Sprintf("ledger: %s record for unknown entry %d", kind, id))
	}
}
