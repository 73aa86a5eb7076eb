package axioms

import "testing"

func TestTableHasNoEmptyFields(t *testing.T) {
	for i, tr := range Table {
		if tr.Subject == "" || tr.Predicate == "" || tr.Object == "" {
			t.Fatalf("Table[%d] = %+v has an empty field", i, tr)
		}
	}
}

func TestTableDeclaresRDFTypeDomain(t *testing.T) {
	want := Triple{rdfType, rdfsDomain, resource}
	for _, tr := range Table {
		if tr == want {
			return
		}
	}
	t.Fatalf("expected Table to contain %+v", want)
}

func TestTableDeclaresContainerMembershipPropertySubClass(t *testing.T) {
	want := Triple{cmProp, rdfsSubClass, propertyC}
	for _, tr := range Table {
		if tr == want {
			return
		}
	}
	t.Fatalf("expected Table to contain %+v", want)
}

func TestTableHasNoDuplicateRows(t *testing.T) {
	seen := make(map[Triple]bool, len(Table))
	for _, tr := range Table {
		if seen[tr] {
			t.Fatalf("duplicate row in Table: %+v", tr)
		}
		seen[tr] = true
	}
}
