package proxy

// CvGameDatabaseFile is the file name of the original database module,
// installed next to the executable. The table for CvGameDatabase binds to
// it.
const CvGameDatabaseFile = "CvGameDatabase_Original.dll"

// NewCvGameDatabase creates the forwarding table for the database module.
func NewCvGameDatabase() (*Table, error) {
	return New("CvGameDatabase", CvGameDatabase)
}
