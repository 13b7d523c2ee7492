// Package analyzer implements the usage analyzer: it consumes the node
// records the AST stream scanner emits, reconciles inherited location
// fields across sibling nodes, interns locations through a string pool,
// links declarations to their prior prototypes, and aggregates a used/
// unused verdict per declaration.
package analyzer

import (
	"strconv"

	"github.com/standardbeagle/finddead/internal/pool"
	"github.com/standardbeagle/finddead/internal/scanner"
	"github.com/standardbeagle/finddead/internal/scope"
)

// interestingKinds is the closed set of declaration kinds this analyzer
// reports on. Destructors are deliberately excluded: reporting an unused
// destructor is not useful (spec.md §4.D step 2).
var interestingKinds = map[string]bool{
	"FunctionDecl":       true,
	"CXXMethodDecl":      true,
	"CXXConstructorDecl": true,
	"CXXConversionDecl":  true,
}

// Analyzer is a single-threaded, single-translation-unit usage analyzer.
// One instance owns disjoint state from any other; spec.md §5 places all
// cross-instance parallelism at the system boundary, so nothing here
// needs a mutex.
type Analyzer struct {
	pool     *pool.Pool
	resolver *scope.Resolver

	idToLoc    map[uint64]pool.Handle
	idToSecLoc map[uint64]pool.Handle
	usedLocs   map[pool.Handle]struct{}

	currentFile cursor
	currentLine lineCursor
}

// New creates an Analyzer that resolves paths with resolver and interns
// locations into a fresh, private string pool.
func New(resolver *scope.Resolver) *Analyzer {
	return &Analyzer{
		pool:       pool.New(),
		resolver:   resolver,
		idToLoc:    make(map[uint64]pool.Handle),
		idToSecLoc: make(map[uint64]pool.Handle),
		usedLocs:   make(map[pool.Handle]struct{}),
	}
}

// OnNode implements spec.md §4.D's on_node entry point: it is called once
// per flushed AST node, in scanner-emission order (pre-order, parent
// before children), and never returns an error for input that the spec
// itself documents as a silently-ignored quirk (a dangling previousDecl,
// a kind outside the interesting set). It only returns an error for the
// fatal conditions spec.md §7 assigns to families 1 and 2 (malformed
// input is the scanner's job, not this one's) — here, an inherited file
// or line value that overruns its fixed-capacity buffer.
func (a *Analyzer) OnNode(node *scanner.AstNode) error {
	if err := a.inheritLocation(node); err != nil {
		return err
	}

	if !a.passesFilter(node) {
		return nil
	}

	id, ok := parseNodeID(node.ID)
	if !ok {
		return nil
	}

	locHandle, secHandle, ok := a.computeLocationHandles(node)
	if !ok {
		return nil
	}

	a.record(id, locHandle, secHandle)
	a.markUsed(node, locHandle, secHandle)
	return nil
}

// inheritLocation is spec.md §4.D step 1.
func (a *Analyzer) inheritLocation(node *scanner.AstNode) error {
	effectiveFile := node.Location.PresumedFile
	if effectiveFile == "" {
		effectiveFile = node.Location.File
	}
	if effectiveFile != "" {
		resolved := effectiveFile
		if a.resolver != nil {
			resolved = a.resolver.Resolve(effectiveFile)
		}
		if err := a.currentFile.set(resolved); err != nil {
			return err
		}
	}

	if !a.currentFile.empty() {
		effectiveLine := node.Location.PresumedLine
		if effectiveLine == "" {
			effectiveLine = node.Location.Line
		}
		if effectiveLine != "" {
			if err := a.currentLine.set(effectiveLine); err != nil {
				return err
			}
		}
	}
	return nil
}

// passesFilter is spec.md §4.D step 2.
func (a *Analyzer) passesFilter(node *scanner.AstNode) bool {
	if !interestingKinds[node.Kind] {
		return false
	}
	if a.currentFile.empty() || a.currentLine.empty() || node.Location.Col == "" {
		return false
	}
	if node.IsImplicit || node.IsExplicitlyDeleted {
		return false
	}
	return true
}

// computeLocationHandles is spec.md §4.D step 3. ok is false when the
// node should be silently dropped (a dangling previousDecl).
func (a *Analyzer) computeLocationHandles(node *scanner.AstNode) (loc, sec pool.Handle, ok bool) {
	if node.PreviousDecl != "" {
		prevID, parsed := parseNodeID(node.PreviousDecl)
		if !parsed {
			return 0, 0, false
		}
		prior, found := a.idToLoc[prevID]
		if !found {
			return 0, 0, false
		}
		sec, _ = a.idToSecLoc[prevID]
		return prior, sec, true
	}

	loc = a.pool.Put(a.currentFile.String() + ":" + a.currentLine.String() + ":" + node.Location.Col)

	if node.SecondaryLocation.Col != "" {
		secFile := node.SecondaryLocation.File
		if secFile == "" {
			secFile = a.currentFile.String()
		}
		secLine := node.SecondaryLocation.Line
		if secLine == "" {
			secLine = a.currentLine.String()
		}
		sec = a.pool.Put(secFile + ":" + secLine + ":" + node.Location.Col)
	}
	return loc, sec, true
}

// record is spec.md §4.D step 4. A conflicting location for an id already
// recorded is an internal invariant violation (spec.md §7 family 4): a
// programming error in the scanner or analyzer, not recoverable input.
func (a *Analyzer) record(id uint64, locHandle, secHandle pool.Handle) {
	if existing, ok := a.idToLoc[id]; ok {
		if existing != locHandle {
			panic("finddead: analyzer: conflicting location handles for the same node id")
		}
	} else {
		a.idToLoc[id] = locHandle
	}

	if secHandle != 0 {
		if existing, ok := a.idToSecLoc[id]; ok {
			if existing != secHandle {
				panic("finddead: analyzer: conflicting secondary location handles for the same node id")
			}
		} else {
			a.idToSecLoc[id] = secHandle
		}
	}
}

// markUsed is spec.md §4.D step 5.
func (a *Analyzer) markUsed(node *scanner.AstNode, locHandle, secHandle pool.Handle) {
	if node.IsUsed || node.MangledName == "main" {
		a.usedLocs[locHandle] = struct{}{}
		if secHandle != 0 {
			a.usedLocs[secHandle] = struct{}{}
		}
	}
}

// Result is one record from the result iterator (spec.md §4.E).
type Result struct {
	Location string
	Used     bool
}

// Results enumerates every location handle recorded in the pool with its
// used/unused flag. Order is unspecified, per spec.md §4.E; callers that
// need a stable order sort the returned slice themselves.
func (a *Analyzer) Results() []Result {
	handles := a.pool.All()
	out := make([]Result, 0, len(handles))
	for _, h := range handles {
		s, ok := a.pool.Get(h)
		if !ok {
			continue
		}
		_, used := a.usedLocs[h]
		out = append(out, Result{Location: s, Used: used})
	}
	return out
}

// parseNodeID parses a clang AST node id, which is always emitted as a
// hex literal (e.g. "0x55a1b2c3d4e5") but is accepted in any base per
// spec.md §3 ("numeric literal, used as hex/decimal integer").
func parseNodeID(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
