package hir_test

import (
	"testing"

	"github.com/dtlc-lang/dtlc/internal/hir"
)

func TestArrayAppendReturnsSequentialRefs(t *testing.T) {
	var arr hir.Array
	r0 := arr.Append(hir.Register{Kind: hir.KRoot})
	r1 := arr.Append(hir.Register{Kind: hir.KNumber, NumberValue: 1})
	r2 := arr.Append(hir.Register{Kind: hir.KNumber, NumberValue: 2})

	if r0 != 0 || r1 != 1 || r2 != 2 {
		t.Fatalf("expected sequential refs 0,1,2, got %d,%d,%d", r0, r1, r2)
	}
	if arr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", arr.Len())
	}
}

func TestArrayAtRetrievesAppendedRegister(t *testing.T) {
	var arr hir.Array
	ref := arr.Append(hir.Register{Kind: hir.KString, StringValue: "hello"})

	got := arr.At(ref)
	if got.Kind != hir.KString || got.StringValue != "hello" {
		t.Fatalf("At(%d) = %+v, want Kind=KString StringValue=hello", ref, got)
	}
}

func TestArrayToleratesForwardReferences(t *testing.T) {
	var arr hir.Array
	// A register can point at an index that does not exist yet: Append
	// stores a Ref field as given without checking it.
	forward := hir.Ref(5)
	ref := arr.Append(hir.Register{Kind: hir.KSymbolAssign, AssignSymbol: hir.NoRef, AssignValue: forward})

	got := arr.At(ref)
	if got.AssignValue != forward {
		t.Fatalf("AssignValue = %d, want %d", got.AssignValue, forward)
	}
	for i := hir.Ref(0); i < 5; i++ {
		arr.Append(hir.Register{Kind: hir.KNumber, NumberValue: int64(i)})
	}
	if arr.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", arr.Len())
	}
	if arr.At(forward).NumberValue != 4 {
		t.Fatalf("forward ref resolved to wrong register: %+v", arr.At(forward))
	}
}

func TestNoRefIsNegativeOne(t *testing.T) {
	if hir.NoRef != -1 {
		t.Fatalf("NoRef = %d, want -1", hir.NoRef)
	}
}
