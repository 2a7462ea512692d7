package stores

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Darshanscodehub/CodeCollab/core"
	"github.com/Darshanscodehub/CodeCollab/stores/aws"
	"github.com/Darshanscodehub/CodeCollab/stores/filesystem"
	"github.com/Darshanscodehub/CodeCollab/stores/memory"
	"github.com/Darshanscodehub/CodeCollab/stores/sqlite"
)

// Store is a union interface covering every persistence concern.
type Store interface {
	core.UserStore
	core.SnippetStore
}

// GetStore selects a backend from the STORAGE_TYPE environment variable.
// Unset or unknown values fall back to the in-memory store.
func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "codecollab.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewStore(bucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
