package landmark

import (
	"fmt"
	"io"
	"strconv"
)

// ExportCSV writes all landmarks as CSV with world-space coordinates
// computed at export time. Format: header row, then one
// `mesh,name,x,y,z` row per landmark in canonical list order. It
// returns the number of exported landmarks.
func (s *Store) ExportCSV(w io.Writer) (int, error) {
	if _, err := fmt.Fprintln(w, "Object_Name,Landmark,X,Y,Z"); err != nil {
		return 0, fmt.Errorf("writing export header: %w", err)
	}

	count := 0
	for _, lm := range s.List() {
		world, err := lm.Mesh.WorldVertex(lm.VertexIndex)
		if err != nil {
			return count, fmt.Errorf("exporting landmark %q: %w", lm.Name, err)
		}
		_, err = fmt.Fprintf(w, "%s,%s,%s,%s,%s\n",
			lm.Mesh.Name, lm.Name,
			formatCoord(world.X), formatCoord(world.Y), formatCoord(world.Z))
		if err != nil {
			return count, fmt.Errorf("exporting landmark %q: %w", lm.Name, err)
		}
		count++
	}
	return count, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
