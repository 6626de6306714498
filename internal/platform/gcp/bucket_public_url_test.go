package gcp

import "testing"

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name     string
		bs       *bucketService
		category BucketCategory
		key      string
		want     string
	}{
		{
			name:     "gcs default avatar",
			bs:       &bucketService{avatarBucket: BucketConfig{Name: "avatars"}, storageMode: StorageModeGCS},
			category: BucketCategoryAvatar,
			key:      "/u1/1.png",
			want:     "https://storage.googleapis.com/avatars/u1/1.png",
		},
		{
			name:     "file categories share a prefixed bucket",
			bs:       &bucketService{filesBucket: BucketConfig{Name: "files"}, storageMode: StorageModeGCS},
			category: BucketCategorySkillProof,
			key:      "u1/proof.pdf",
			want:     "https://storage.googleapis.com/files/skill_proof/u1/proof.pdf",
		},
		{
			name:     "cdn wins",
			bs:       &bucketService{filesBucket: BucketConfig{Name: "files", CDNDomain: "cdn.quidz.test"}, storageMode: StorageModeGCS},
			category: BucketCategoryDocument,
			key:      "u1/cv.pdf",
			want:     "https://cdn.quidz.test/document/u1/cv.pdf",
		},
		{
			name: "emulator media url",
			bs: &bucketService{
				filesBucket:   BucketConfig{Name: "files"},
				storageMode:   StorageModeGCSEmulator,
				publicBaseURL: "http://localhost:4443",
			},
			category: BucketCategoryProject,
			key:      "p1/cover.png",
			want:     "http://localhost:4443/storage/v1/b/files/o/project%2Fp1%2Fcover.png?alt=media",
		},
		{
			name:     "public base path style",
			bs:       &bucketService{avatarBucket: BucketConfig{Name: "avatars"}, storageMode: StorageModeGCS, publicBaseURL: "http://minio:9000"},
			category: BucketCategoryAvatar,
			key:      "u1/1.png",
			want:     "http://minio:9000/avatars/u1/1.png",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bs.GetPublicURL(tc.category, tc.key); got != tc.want {
				t.Fatalf("GetPublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestObjectNameRejectsUnknownCategoryAndEmptyKey(t *testing.T) {
	bs := &bucketService{avatarBucket: BucketConfig{Name: "a"}, filesBucket: BucketConfig{Name: "f"}}
	if _, _, err := bs.objectName(BucketCategory("material"), "x.png"); err == nil {
		t.Fatalf("unknown category: expected error")
	}
	if _, _, err := bs.objectName(BucketCategoryTask, "  "); err == nil {
		t.Fatalf("empty key: expected error")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a/b.PNG":      "image/png",
		"a/b.jpeg?v=1": "image/jpeg",
		"cv.pdf":       "application/pdf",
		"notes.txt":    "text/plain; charset=utf-8",
		"unknown.bin":  "",
		"no-extension": "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
