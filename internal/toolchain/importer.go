package toolchain

import (
	"fmt"
	"go/types"
)

// projectImporter resolves project-local import paths through the same
// incremental program, so a dependency package is checked at most once
// per version state. Everything else goes to the source importer,
// which keeps its own warm cache for the life of the session.
type projectImporter struct {
	p *Program
}

func (pi *projectImporter) Import(path string) (*types.Package, error) {
	p := pi.p
	dir, ok := p.dirForImport(path)
	if !ok {
		return p.fallback.Import(path)
	}
	if p.checking[dir] {
		return nil, fmt.Errorf("import cycle through %s", path)
	}
	cp, err := p.ensurePackage(dir, "", true)
	if err != nil {
		return nil, err
	}
	if cp.pkg == nil {
		return nil, fmt.Errorf("package %s has syntax errors", path)
	}
	return cp.pkg, nil
}
