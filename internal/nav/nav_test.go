package nav

import "testing"

func TestBuildMarksExactlyOneActive(t *testing.T) {
	for _, it := range Main {
		active := 0
		for _, r := range Build(it.Path) {
			if r.Active {
				active++
				if r.Href != it.Path {
					t.Fatalf("path %s: wrong item active %s", it.Path, r.Href)
				}
			}
		}
		if active != 1 {
			t.Fatalf("path %s: expected one active item, got %d", it.Path, active)
		}
	}
}

func TestBuildUnknownSectionHasNoActiveItem(t *testing.T) {
	for _, r := range Build("/unknown") {
		if r.Active {
			t.Fatalf("expected no active item, got %s", r.Href)
		}
	}
	if _, ok := Section("/unknown"); ok {
		t.Fatalf("expected unknown section")
	}
	if it, ok := Section("/chat/export"); !ok || it.Path != "/chat" {
		t.Fatalf("expected /chat section, got %+v ok=%v", it, ok)
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/pipeline/sample-review")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %d", len(crumbs))
	}
	if crumbs[1].LabelKey != "nav.pipeline" || crumbs[1].Active {
		t.Fatalf("unexpected section crumb %+v", crumbs[1])
	}
	if crumbs[2].Label != "Sample review" || !crumbs[2].Active {
		t.Fatalf("unexpected leaf crumb %+v", crumbs[2])
	}
}
