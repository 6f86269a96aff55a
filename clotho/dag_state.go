package clotho

import (
	"sort"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/clotho/election"
	"github.com/Fantom-foundation/clotho-base/hash"
	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/inter/pos"
)

// BlockStore is the durable backend of DagState. It is written on Flush and
// on commit, and read back on the rare paths where the in-memory caches
// cannot answer.
type BlockStore interface {
	// HasBlocks returns an existence flag for every ref, in order.
	HasBlocks(refs []dag.BlockRef) ([]bool, error)
	// GetBlocks returns the stored blocks of the refs, nil for the absent ones.
	GetBlocks(refs []dag.BlockRef) (dag.Blocks, error)
	// ScanBlocksByAuthor returns the stored blocks of the author with
	// round >= from, in round order.
	ScanBlocksByAuthor(author idx.Validator, from idx.Round) (dag.Blocks, error)
	// WriteBlocks persists the accepted blocks.
	WriteBlocks(blocks dag.Blocks) error
	// WriteCommits persists the commits, their blocks and the new commit
	// state in one durable batch.
	WriteCommits(commits []*Commit, blocks dag.Blocks, state *CommitState) error
	// ScanCommits returns the stored commits with index in [from, to], ascending.
	ScanCommits(from, to idx.Commit) ([]*Commit, error)
	// GetCommitState returns the last stored commit state, or nil.
	GetCommitState() (*CommitState, error)
}

// Proposal describes the block this authority should build next.
type Proposal struct {
	Round   idx.Round
	Parents []dag.BlockRef
	// MaxParentTime is the maximal creation time of the parents.
	MaxParentTime dag.Timestamp
}

// suspendedBlock tracks a block which cannot be accepted yet, or a ref which
// some suspended block waits for.
type suspendedBlock struct {
	block      *dag.Block            // nil until the block itself arrives
	missing    map[dag.BlockRef]bool // parents which aren't accepted yet
	dependents map[dag.BlockRef]bool // suspended blocks waiting for this ref
}

func newSuspendedBlock() *suspendedBlock {
	return &suspendedBlock{
		missing:    map[dag.BlockRef]bool{},
		dependents: map[dag.BlockRef]bool{},
	}
}

// roundInfo aggregates the accepted blocks of one round.
type roundInfo struct {
	refs     []dag.BlockRef
	authors  *pos.WeightCounter
	quorumAt time.Time // zero while the round is below quorum
}

// DagState is the in-memory view of the block DAG of one epoch: the accepted
// blocks of the recent rounds, the suspended blocks waiting for their
// parents, and the commit watermark. Every accepted block is causally
// complete. All the methods are safe for concurrent use.
type DagState struct {
	cfg        Config
	me         idx.Validator
	validators *pos.Validators
	schedule   *election.LeaderSchedule
	store      BlockStore
	crit       func(error)

	mu sync.RWMutex

	genesis         map[dag.BlockRef]*dag.Block
	genesisByAuthor []*dag.Block
	byAuthor        []*treemap.Map // per-author: dag.BlockRef -> *dag.Block
	byRound         *treemap.Map   // idx.Round -> *roundInfo
	suspended       map[dag.BlockRef]*suspendedBlock

	highestAccepted idx.Round
	highestProposed idx.Round

	lastCommit      idx.Commit
	committedRounds []idx.Round

	pendingWrite dag.Blocks // accepted since the last flush
}

func refComparator(a, b interface{}) int {
	aRef, bRef := a.(dag.BlockRef), b.(dag.BlockRef)
	return aRef.Compare(bRef)
}

func roundComparator(a, b interface{}) int {
	aR, bR := a.(idx.Round), b.(idx.Round)
	if aR < bR {
		return -1
	}
	if aR > bR {
		return 1
	}
	return 0
}

// maxDigest is the Floor lookup sentinel within one (author, round).
var maxDigest = func() hash.Hash {
	var h hash.Hash
	for i := range h {
		h[i] = 0xff
	}
	return h
}()

// NewDagState creates the in-memory DAG view of the epoch, primed with the
// genesis blocks and restored from the store.
func NewDagState(store BlockStore, validators *pos.Validators, schedule *election.LeaderSchedule, me idx.Validator, cfg Config, crit func(error)) (*DagState, error) {
	s := &DagState{
		cfg:             cfg,
		me:              me,
		validators:      validators,
		schedule:        schedule,
		store:           store,
		crit:            crit,
		genesis:         map[dag.BlockRef]*dag.Block{},
		genesisByAuthor: make([]*dag.Block, validators.Len()),
		byAuthor:        make([]*treemap.Map, validators.Len()),
		byRound:         treemap.NewWith(roundComparator),
		suspended:       map[dag.BlockRef]*suspendedBlock{},
		committedRounds: make([]idx.Round, validators.Len()),
	}
	for i := range s.byAuthor {
		s.byAuthor[i] = treemap.NewWith(refComparator)
	}
	for _, g := range dag.GenesisBlocks(validators.Len()) {
		s.genesis[g.Ref()] = g
		s.genesisByAuthor[g.Author] = g
		s.insert(g)
	}

	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// restore reloads the commit watermark and the recent accepted history.
func (s *DagState) restore() error {
	state, err := s.store.GetCommitState()
	if err != nil {
		return errors.Wrap(err, "read commit state")
	}
	if state != nil {
		s.lastCommit = state.Index
		copy(s.committedRounds, state.CommittedRounds)
	}

	for author := idx.Validator(0); author < s.validators.Len(); author++ {
		from := FirstRound
		if committed := s.committedRounds[author]; committed > s.cfg.CachedRounds {
			from = committed - s.cfg.CachedRounds + 1
		}
		blocks, err := s.store.ScanBlocksByAuthor(author, from)
		if err != nil {
			return errors.Wrap(err, "scan blocks")
		}
		for _, b := range blocks {
			s.insert(b)
		}
	}

	if k, _ := s.byAuthor[s.me].Max(); k != nil {
		s.highestProposed = k.(dag.BlockRef).Round
	}
	// trim the genesis rows out of the committed range, so that the caches
	// report authority only over the rounds they fully cover
	s.evict()
	return nil
}

// insert adds an accepted block to the in-memory indexes.
func (s *DagState) insert(b *dag.Block) {
	ref := b.Ref()
	s.byAuthor[ref.Author].Put(ref, b)

	var info *roundInfo
	if infoI, ok := s.byRound.Get(ref.Round); ok {
		info = infoI.(*roundInfo)
	} else {
		info = &roundInfo{authors: s.validators.NewCounter()}
		s.byRound.Put(ref.Round, info)
	}
	info.refs = append(info.refs, ref)
	info.authors.Count(ref.Author)
	if info.quorumAt.IsZero() && info.authors.HasQuorum() {
		info.quorumAt = time.Now()
	}

	if ref.Round > s.highestAccepted {
		s.highestAccepted = ref.Round
	}
}

// TryAccept adds verified blocks to the DAG. A block whose parents are all
// accepted is accepted immediately, together with every suspended block its
// acceptance completes. A block with missing parents is suspended until they
// arrive. Returns the number of blocks accepted by this call.
func (s *DagState) TryAccept(blocks dag.Blocks) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.pendingWrite)
	for _, b := range blocks {
		if err := s.tryAcceptOne(b); err != nil {
			return len(s.pendingWrite) - before, err
		}
	}
	return len(s.pendingWrite) - before, nil
}

func (s *DagState) tryAcceptOne(b *dag.Block) error {
	ref := b.Ref()
	if ref.Round == 0 {
		return nil // the genesis blocks are pre-accepted
	}
	if s.isKnown(ref) {
		return nil
	}
	for _, p := range b.Parents {
		if p.Round >= ref.Round {
			return errors.Errorf("invalid parent %s of block %s", p, ref)
		}
	}

	missing, toCheck := s.classifyParents(b)
	if len(toCheck) > 0 {
		exists, err := s.store.HasBlocks(toCheck)
		if err != nil {
			return errors.Wrap(err, "parents lookup")
		}
		for i, ok := range exists {
			if !ok {
				missing = append(missing, toCheck[i])
			}
		}
	}

	if len(missing) > 0 {
		s.suspend(b, missing)
		return nil
	}
	s.accept(b)
	return nil
}

func (s *DagState) isKnown(ref dag.BlockRef) bool {
	if _, ok := s.genesis[ref]; ok {
		return true
	}
	if _, ok := s.byAuthor[ref.Author].Get(ref); ok {
		return true
	}
	if sb, ok := s.suspended[ref]; ok && sb.block != nil {
		return true
	}
	return false
}

// classifyParents splits the parents of the block into surely missing refs
// and refs to look up in the store. The per-author cache is authoritative
// for every round it covers, since uncommitted blocks are never evicted.
func (s *DagState) classifyParents(b *dag.Block) (missing, toCheck []dag.BlockRef) {
	for _, p := range b.Parents {
		if _, ok := s.genesis[p]; ok {
			continue
		}
		authorCache := s.byAuthor[p.Author]
		if _, ok := authorCache.Get(p); ok {
			continue
		}
		if _, ok := s.suspended[p]; ok {
			// known but not accepted
			missing = append(missing, p)
			continue
		}
		if !authorCache.Empty() {
			oldest, _ := authorCache.Min()
			if oldest.(dag.BlockRef).Round <= p.Round {
				missing = append(missing, p)
				continue
			}
		}
		toCheck = append(toCheck, p)
	}
	return missing, toCheck
}

func (s *DagState) suspend(b *dag.Block, missing []dag.BlockRef) {
	ref := b.Ref()
	sb, ok := s.suspended[ref]
	if !ok {
		sb = newSuspendedBlock()
		s.suspended[ref] = sb
	}
	sb.block = b
	for _, m := range missing {
		sb.missing[m] = true

		msb, ok := s.suspended[m]
		if !ok {
			msb = newSuspendedBlock()
			s.suspended[m] = msb
		}
		msb.dependents[ref] = true
	}
}

// accept inserts the block and cascades through the suspended blocks its
// acceptance completes. An explicit stack is used instead of recursion, so
// that an adversarial DAG cannot overflow the call stack.
func (s *DagState) accept(b *dag.Block) {
	stack := dag.Blocks{b}
	for len(stack) > 0 {
		blk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ref := blk.Ref()

		s.insert(blk)
		s.pendingWrite = append(s.pendingWrite, blk)

		sb, ok := s.suspended[ref]
		if !ok {
			continue
		}
		delete(s.suspended, ref)
		if len(sb.missing) != 0 {
			s.crit(errors.Errorf("accepted block %s still misses %d parents", ref, len(sb.missing)))
			continue
		}
		for dep := range sb.dependents {
			depSb, ok := s.suspended[dep]
			if !ok {
				s.crit(errors.Errorf("dependent %s of %s isn't suspended", dep, ref))
				continue
			}
			delete(depSb.missing, ref)
			if len(depSb.missing) == 0 && depSb.block != nil {
				stack = append(stack, depSb.block)
			}
		}
	}
}

// Flush persists the blocks accepted since the previous flush and trims the
// caches. Only committed blocks outside of the cache window are evicted.
func (s *DagState) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pendingWrite) > 0 {
		if err := s.store.WriteBlocks(s.pendingWrite); err != nil {
			return errors.Wrap(err, "write blocks")
		}
		s.pendingWrite = nil
	}
	s.evict()
	return nil
}

// evict drops the committed blocks outside of the cache window. At least one
// block per author is always kept, so that the cache stays authoritative.
func (s *DagState) evict() {
	for author := idx.Validator(0); author < s.validators.Len(); author++ {
		committed := s.committedRounds[author]
		if committed <= s.cfg.CachedRounds {
			continue
		}
		evictRound := committed - s.cfg.CachedRounds
		authorCache := s.byAuthor[author]
		for authorCache.Size() > 1 {
			k, _ := authorCache.Min()
			ref := k.(dag.BlockRef)
			if ref.Round > evictRound {
				break
			}
			authorCache.Remove(k)
		}
	}

	lowest := idx.Round(0)
	for i, committed := range s.committedRounds {
		if i == 0 || committed < lowest {
			lowest = committed
		}
	}
	for s.byRound.Size() > int(s.cfg.IndexedRounds) {
		k, _ := s.byRound.Min()
		if k.(idx.Round) > lowest {
			break
		}
		s.byRound.Remove(k)
	}
}

// blockByRef returns the cached block of the ref, or nil.
func (s *DagState) blockByRef(ref dag.BlockRef) *dag.Block {
	if g, ok := s.genesis[ref]; ok {
		return g
	}
	if v, ok := s.byAuthor[ref.Author].Get(ref); ok {
		return v.(*dag.Block)
	}
	return nil
}

// addCommit advances the watermark by one commit. The indexes must grow one
// by one.
func (s *DagState) addCommit(c *Commit) {
	if c.Index != s.lastCommit+1 {
		s.crit(errors.Errorf("out of order commit %d after %d", c.Index, s.lastCommit))
	}
	s.lastCommit = c.Index
	copy(s.committedRounds, c.CommittedRounds)
}

// BlockAt returns the accepted block of the author at the round, or nil.
// At an equivocation, the block with the lowest digest wins.
func (s *DagState) BlockAt(round idx.Round, author idx.Validator) *dag.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockAt(round, author)
}

func (s *DagState) blockAt(round idx.Round, author idx.Validator) *dag.Block {
	k, v := s.byAuthor[author].Ceiling(dag.BlockRef{Round: round, Author: author})
	if k == nil || k.(dag.BlockRef).Round != round {
		return nil
	}
	return v.(*dag.Block)
}

// latestAtOrBelow returns the most recent accepted block of the author with
// round <= r, falling back to its genesis block.
func (s *DagState) latestAtOrBelow(author idx.Validator, r idx.Round) *dag.Block {
	sentinel := dag.BlockRef{Round: r, Author: author, Digest: maxDigest}
	if _, v := s.byAuthor[author].Floor(sentinel); v != nil {
		return v.(*dag.Block)
	}
	return s.genesisByAuthor[author]
}

// BlocksAtRound returns the accepted blocks of the round, in ref order.
func (s *DagState) BlocksAtRound(r idx.Round) dag.Blocks {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infoI, ok := s.byRound.Get(r)
	if !ok {
		return nil
	}
	info := infoI.(*roundInfo)

	refs := append([]dag.BlockRef{}, info.refs...)
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Less(refs[j])
	})
	blocks := make(dag.Blocks, 0, len(refs))
	for _, ref := range refs {
		if b := s.blockByRef(ref); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// RoundQuorum reports whether the accepted blocks of the round carry a
// quorum of weight, and the time when the quorum was reached.
func (s *DagState) RoundQuorum(r idx.Round) (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infoI, ok := s.byRound.Get(r)
	if !ok {
		return false, time.Time{}
	}
	info := infoI.(*roundInfo)
	return info.authors.HasQuorum(), info.quorumAt
}

// ContainsBlocks reports acceptance of every ref, consulting the store for
// the refs older than the cache window.
func (s *DagState) ContainsBlocks(refs []dag.BlockRef) ([]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]bool, len(refs))
	var toCheck []dag.BlockRef
	var toCheckPos []int
	for i, ref := range refs {
		if s.blockByRef(ref) != nil {
			res[i] = true
			continue
		}
		if _, ok := s.suspended[ref]; ok {
			continue
		}
		authorCache := s.byAuthor[ref.Author]
		if !authorCache.Empty() {
			oldest, _ := authorCache.Min()
			if oldest.(dag.BlockRef).Round <= ref.Round {
				continue
			}
		}
		toCheck = append(toCheck, ref)
		toCheckPos = append(toCheckPos, i)
	}
	if len(toCheck) > 0 {
		exists, err := s.store.HasBlocks(toCheck)
		if err != nil {
			return nil, errors.Wrap(err, "refs lookup")
		}
		for i, ok := range exists {
			res[toCheckPos[i]] = ok
		}
	}
	return res, nil
}

// GetBlocks returns the blocks of the refs, nil for the unknown ones. The
// refs outside of the cache window are read from the store.
func (s *DagState) GetBlocks(refs []dag.BlockRef) (dag.Blocks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make(dag.Blocks, len(refs))
	var toFetch []dag.BlockRef
	var toFetchPos []int
	for i, ref := range refs {
		if b := s.blockByRef(ref); b != nil {
			blocks[i] = b
			continue
		}
		toFetch = append(toFetch, ref)
		toFetchPos = append(toFetchPos, i)
	}
	if len(toFetch) > 0 {
		fetched, err := s.store.GetBlocks(toFetch)
		if err != nil {
			return nil, errors.Wrap(err, "blocks fetch")
		}
		for i, b := range fetched {
			blocks[toFetchPos[i]] = b
		}
	}
	return blocks, nil
}

// MissingBlocks returns the refs the suspended blocks are waiting for and
// which haven't arrived themselves. It is the feed for the sync layer.
func (s *DagState) MissingBlocks() []dag.BlockRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []dag.BlockRef
	for ref, sb := range s.suspended {
		if sb.block == nil {
			missing = append(missing, ref)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].Less(missing[j])
	})
	return missing
}

// SuspendedCount returns the number of suspended blocks waiting for their
// parents.
func (s *DagState) SuspendedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sb := range s.suspended {
		if sb.block != nil {
			count++
		}
	}
	return count
}

// HighestAcceptedRound returns the round of the newest accepted block.
func (s *DagState) HighestAcceptedRound() idx.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highestAccepted
}

// LastCommitIndex returns the index of the last commit, 0 for none.
func (s *DagState) LastCommitIndex() idx.Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCommit
}

// CommittedRounds returns a copy of the last committed round of every
// authority.
func (s *DagState) CommittedRounds() []idx.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]idx.Round{}, s.committedRounds...)
}

// Validators returns the committee of the epoch.
func (s *DagState) Validators() *pos.Validators {
	return s.validators
}
