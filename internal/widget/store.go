package widget

// ConfigStore is the scoped key/value persistence the widget core runs
// against. Entries are either app-global or per-user; the versioned pair of
// operations backs compare-and-swap saves of the collection blobs.
type ConfigStore interface {
	GetAppValue(key string, defaultValue string) string
	SetAppValue(key string, value string) error
	DeleteAppValue(key string) error
	AppKeys() ([]string, error)

	GetUserValue(userID string, key string, defaultValue string) string
	SetUserValue(userID string, key string, value string) error
	DeleteUserValue(userID string, key string) error

	GetVersioned(key string) (string, int64, error)
	CompareAndSwap(key string, value string, expectedVersion int64) error
}
