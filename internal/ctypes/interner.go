package ctypes

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// TypedefInfo stores the name and target of a typedef.
type TypedefInfo struct {
	Name   string
	Target QualType
}

// Field is a named member of a struct or union.
type Field struct {
	Name string
	Type QualType
}

// RecordInfo stores the tag and, once the body has been seen, the members
// of a struct or union. Anonymous records get a synthetic tag.
type RecordInfo struct {
	Tag      string
	Union    bool
	Complete bool
	Fields   []Field
}

// FuncInfo stores a function signature.
type FuncInfo struct {
	Result   QualType
	Params   []QualType
	Variadic bool
	// NoProto marks K&R style "int f()" declarations.
	NoProto bool
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Typedefs and records are nominal: each registration gets its own id.
type Interner struct {
	target   Target
	types    []Type
	index    map[typeKey]TypeID
	builtins map[Kind]TypeID
	typedefs []TypedefInfo
	records  []RecordInfo
	recordBy map[string]TypeID
	funcs    []FuncInfo
	funcBy   map[string]TypeID
}

type typeKey struct {
	Kind    Kind
	Elem    QualType
	Count   uint32
	Payload uint32
}

// NewInterner constructs an interner for target seeded with the builtin types.
func NewInterner(target Target) *Interner {
	in := &Interner{
		target:   target,
		index:    make(map[typeKey]TypeID, 64),
		builtins: make(map[Kind]TypeID, len(builtinNames)),
		recordBy: make(map[string]TypeID),
		funcBy:   make(map[string]TypeID),
	}
	// slot 0 of every side table is a sentinel
	in.typedefs = append(in.typedefs, TypedefInfo{})
	in.records = append(in.records, RecordInfo{})
	in.funcs = append(in.funcs, FuncInfo{})
	in.internRaw(Type{Kind: KindInvalid})
	for k := KindVoid; k <= KindLongDouble; k++ {
		in.builtins[k] = in.intern(Type{Kind: k})
	}
	return in
}

// Target returns the data model the interner was built for.
func (in *Interner) Target() Target {
	return in.target
}

// Builtin returns the unqualified builtin type of kind k.
func (in *Interner) Builtin(k Kind) QualType {
	id, ok := in.builtins[k]
	if !ok {
		panic(fmt.Errorf("ctypes: %v is not a builtin kind", k))
	}
	return QualType{ID: id}
}

// PointerTo returns the type "pointer to elem".
func (in *Interner) PointerTo(elem QualType) QualType {
	return QualType{ID: in.intern(Type{Kind: KindPointer, Elem: elem})}
}

// ArrayOf returns the type "array of count elem".
func (in *Interner) ArrayOf(elem QualType, count uint32) QualType {
	return QualType{ID: in.intern(Type{Kind: KindArray, Elem: elem, Count: count})}
}

// Function returns the function type for the given signature.
func (in *Interner) Function(info FuncInfo) QualType {
	key := funcKey(info)
	if id, ok := in.funcBy[key]; ok {
		return QualType{ID: id}
	}
	info.Params = slices.Clone(info.Params)
	slot := in.appendFunc(info)
	id := in.internRaw(Type{Kind: KindFunction, Elem: info.Result, Payload: slot})
	in.funcBy[key] = id
	return QualType{ID: id}
}

// Record returns the record type tagged tag, creating it on first use.
func (in *Interner) Record(tag string, union bool) QualType {
	key := "struct " + tag
	if union {
		key = "union " + tag
	}
	if id, ok := in.recordBy[key]; ok {
		return QualType{ID: id}
	}
	in.records = append(in.records, RecordInfo{Tag: tag, Union: union})
	slot := in.slot(len(in.records) - 1)
	id := in.internRaw(Type{Kind: KindRecord, Payload: slot})
	in.recordBy[key] = id
	return QualType{ID: id}
}

// CompleteRecord attaches the member list to a record declared by Record.
// It reports false when qt is not a record or already has a body.
func (in *Interner) CompleteRecord(qt QualType, fields []Field) bool {
	tt, ok := in.Lookup(qt.ID)
	if !ok || tt.Kind != KindRecord {
		return false
	}
	info := &in.records[tt.Payload]
	if info.Complete {
		return false
	}
	info.Complete = true
	info.Fields = slices.Clone(fields)
	return true
}

// Member returns the type of the member called name, looking through
// typedefs and into anonymous nested records.
func (in *Interner) Member(qt QualType, name string) (QualType, bool) {
	tt, ok := in.Lookup(in.Desugar(qt).ID)
	if !ok || tt.Kind != KindRecord {
		return QualType{}, false
	}
	info := in.records[tt.Payload]
	for _, f := range info.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	for _, f := range info.Fields {
		if f.Name != "" {
			continue
		}
		if m, ok := in.Member(f.Type, name); ok {
			return m, true
		}
	}
	return QualType{}, false
}

// RegisterTypedef allocates a new typedef type named name that stands for target.
func (in *Interner) RegisterTypedef(name string, target QualType) QualType {
	in.typedefs = append(in.typedefs, TypedefInfo{Name: name, Target: target})
	slot := in.slot(len(in.typedefs) - 1)
	id := in.internRaw(Type{Kind: KindTypedef, Elem: target, Payload: slot})
	return QualType{ID: id}
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("ctypes: invalid TypeID")
	}
	return tt
}

// TypedefInfo returns metadata of a typedef type.
func (in *Interner) TypedefInfo(id TypeID) (TypedefInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypedef {
		return TypedefInfo{}, false
	}
	return in.typedefs[tt.Payload], true
}

// RecordInfo returns metadata of a record type.
func (in *Interner) RecordInfo(id TypeID) (RecordInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindRecord {
		return RecordInfo{}, false
	}
	return in.records[tt.Payload], true
}

// FuncInfo returns the signature of a function type.
func (in *Interner) FuncInfo(id TypeID) (FuncInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunction {
		return FuncInfo{}, false
	}
	return in.funcs[tt.Payload], true
}

func (in *Interner) intern(t Type) TypeID {
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	if t.Kind != KindTypedef {
		in.index[typeKey(t)] = id
	}
	return id
}

func (in *Interner) appendFunc(info FuncInfo) uint32 {
	in.funcs = append(in.funcs, info)
	return in.slot(len(in.funcs) - 1)
}

func (in *Interner) slot(n int) uint32 {
	s, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("side table overflow: %w", err))
	}
	return s
}

func funcKey(info FuncInfo) string {
	key := fmt.Sprintf("%d/%d|%v|%v", info.Result.ID, info.Result.Quals, info.Variadic, info.NoProto)
	for _, p := range info.Params {
		key += fmt.Sprintf("|%d/%d", p.ID, p.Quals)
	}
	return key
}
