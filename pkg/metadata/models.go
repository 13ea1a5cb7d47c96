package metadata

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marmos91/filebank/pkg/content"
)

// Attributes is the free-form, schema-validated metadata of an item.
// It is persisted as a JSON document.
type Attributes map[string]any

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Attributes", src)
	}

	out := Attributes{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
	}
	*a = out
	return nil
}

// Directory is a node of the virtual tree that can hold other items.
//
// ParentID is empty for directories at the root. (ParentID, Name) is unique.
type Directory struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	RefID     string     `gorm:"not null;size:1024;index" json:"refId"`
	Name      string     `gorm:"not null;size:255;uniqueIndex:idx_directories_parent_name,priority:2" json:"name"`
	ParentID  string     `gorm:"not null;default:'';size:36;uniqueIndex:idx_directories_parent_name,priority:1" json:"parent,omitempty"`
	Metadata  Attributes `gorm:"type:text" json:"metadata"`
	Seq       int64      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Directory.
func (Directory) TableName() string { return "directories" }

// Item returns the content view of the directory.
func (d *Directory) Item() content.Item {
	return content.Item{RefID: d.RefID, Name: d.Name, Type: content.TypeDirectory}
}

// MarshalJSON adds the item type to the encoded directory.
func (d Directory) MarshalJSON() ([]byte, error) {
	type alias Directory
	return json.Marshal(struct {
		alias
		Type content.ItemType `json:"type"`
	}{alias(d), content.TypeDirectory})
}

// File is a leaf of the virtual tree backed by content in a backend.
//
// DirectoryID is empty for files at the root. (DirectoryID, Name) is unique.
type File struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	RefID       string     `gorm:"not null;size:1024;index" json:"refId"`
	Name        string     `gorm:"not null;size:255;uniqueIndex:idx_files_directory_name,priority:2" json:"name"`
	DirectoryID string     `gorm:"not null;default:'';size:36;uniqueIndex:idx_files_directory_name,priority:1" json:"directory,omitempty"`
	MimeType    string     `gorm:"not null;size:255" json:"mimetype"`
	Metadata    Attributes `gorm:"type:text" json:"metadata"`
	Seq         int64      `gorm:"not null;index" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for File.
func (File) TableName() string { return "files" }

// Item returns the content view of the file.
func (f *File) Item() content.Item {
	return content.Item{RefID: f.RefID, Name: f.Name, Type: content.TypeFile}
}

// MarshalJSON adds the item type to the encoded file.
func (f File) MarshalJSON() ([]byte, error) {
	type alias File
	return json.Marshal(struct {
		alias
		Type content.ItemType `json:"type"`
	}{alias(f), content.TypeFile})
}

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&Directory{},
		&File{},
	}
}

// Entry is one child in a directory listing: exactly one of Directory and
// File is set.
type Entry struct {
	Directory *Directory
	File      *File
}

// Type returns the item type of the entry.
func (e Entry) Type() content.ItemType {
	if e.Directory != nil {
		return content.TypeDirectory
	}
	return content.TypeFile
}

// Name returns the entry display name.
func (e Entry) Name() string {
	if e.Directory != nil {
		return e.Directory.Name
	}
	if e.File != nil {
		return e.File.Name
	}
	return ""
}

// RefID returns the content reference of the entry.
func (e Entry) RefID() string {
	if e.Directory != nil {
		return e.Directory.RefID
	}
	if e.File != nil {
		return e.File.RefID
	}
	return ""
}

// MarshalJSON encodes whichever side of the entry is set.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Directory != nil:
		return json.Marshal(e.Directory)
	case e.File != nil:
		return json.Marshal(e.File)
	default:
		return []byte("null"), nil
	}
}
