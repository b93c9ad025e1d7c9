package classify

import (
	"sort"

	"bakerypay/payroll"
)

// StoredFiles is the outcome of comparing file records with the objects in the bucket.
type StoredFiles struct {
	Matched int
	// MissingObjects are records whose workbook is not in the bucket.
	MissingObjects []payroll.IngestedFile
	// OrphanObjects are objects no record points at.
	OrphanObjects []payroll.FileDescriptor
}

func (s StoredFiles) Consistent() bool {
	return len(s.MissingObjects) == 0 && len(s.OrphanObjects) == 0
}

// ClassifyStoredFiles splits records and bucket objects by whether the other side has a
// counterpart with the same name. Both outputs are sorted by name.
func ClassifyStoredFiles(records []payroll.IngestedFile, objects []payroll.FileDescriptor) StoredFiles {
	result := StoredFiles{
		MissingObjects: make([]payroll.IngestedFile, 0),
		OrphanObjects:  make([]payroll.FileDescriptor, 0),
	}

	present := make(map[string]struct{}, len(objects))
	for _, object := range objects {
		present[object.Name] = struct{}{}
	}

	referenced := make(map[string]struct{}, len(records))
	for _, record := range records {
		referenced[record.Filename] = struct{}{}
		if _, ok := present[record.Filename]; ok {
			result.Matched++
			continue
		}
		result.MissingObjects = append(result.MissingObjects, record)
	}

	for _, object := range objects {
		if _, ok := referenced[object.Name]; ok {
			continue
		}
		result.OrphanObjects = append(result.OrphanObjects, object)
	}

	sort.Slice(result.MissingObjects, func(i, j int) bool {
		return result.MissingObjects[i].Filename < result.MissingObjects[j].Filename
	})
	sort.Slice(result.OrphanObjects, func(i, j int) bool {
		return result.OrphanObjects[i].Name < result.OrphanObjects[j].Name
	})
	return result
}
