package logic

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 3, 17, 9, 30, 0, 123456789, time.UTC)

	cursor := encodeCursor(createdAt, testBox)

	gotTime, gotAddress, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decodeCursor returned error: %v", err)
	}
	if !gotTime.Equal(createdAt) {
		t.Errorf("createdAt = %s, want %s", gotTime, createdAt)
	}
	if gotAddress != testBox {
		t.Errorf("boxAddress = %s, want %s", gotAddress, testBox)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"missing separator", "bm9zZXBhcmF0b3I"},     // "noseparator"
		{"bad timestamp", "bm90LWEtdGltZXwweDEyMzQ"}, // "not-a-time|0x1234"
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeCursor(tt.cursor); err == nil {
				t.Errorf("decodeCursor(%q) accepted an invalid cursor", tt.cursor)
			}
		})
	}
}

func TestListMetadataRequiresOwnerForPrivate(t *testing.T) {
	logic := NewMetadataLogic(nil)

	_, _, err := logic.ListMetadata(context.Background(), ListQuery{IsPublic: false})
	if err == nil {
		t.Fatal("private listing without owner address must fail")
	}
}

func testMetadataDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.BoxMetadataModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedMetadata(t *testing.T, db *gorm.DB, address string, createdAt time.Time, network string, public bool, owner string) {
	t.Helper()
	err := db.Create(&model.BoxMetadataModel{
		BoxAddress:   address,
		Network:      network,
		Title:        "Box " + address,
		Public:       public,
		OwnerAddress: owner,
		CreatedAt:    createdAt,
	}).Error
	if err != nil {
		t.Fatalf("failed to seed box %s: %v", address, err)
	}
}

// 集合不变的前提下翻完所有页：每条匹配记录恰好出现一次，
// 按创建时间降序，时间相同按地址降序。
func TestListMetadataPagination(t *testing.T) {
	db := testMetadataDB(t)
	logic := NewMetadataLogic(db)

	base := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	t1 := base.Add(1 * time.Minute)
	t2 := base.Add(2 * time.Minute)
	t3 := base.Add(3 * time.Minute)

	// 公开的Alfajores集合，t1和t2各有三条同时间戳记录考验地址排序
	seedMetadata(t, db, "0x0000000000000000000000000000000000000001", t1, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000002", t1, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000003", t1, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000004", t2, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000005", t2, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000006", t2, "Alfajores", true, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000007", t3, "Alfajores", true, testOwner)

	// 不属于该查询的记录：私有、其他网络
	seedMetadata(t, db, "0x00000000000000000000000000000000000000f1", t3, "Alfajores", false, testOwner)
	seedMetadata(t, db, "0x00000000000000000000000000000000000000f2", t3, "Mainnet", true, testOwner)

	wantOrder := []string{
		"0x0000000000000000000000000000000000000007",
		"0x0000000000000000000000000000000000000006",
		"0x0000000000000000000000000000000000000005",
		"0x0000000000000000000000000000000000000004",
		"0x0000000000000000000000000000000000000003",
		"0x0000000000000000000000000000000000000002",
		"0x0000000000000000000000000000000000000001",
	}

	var collected []string
	cursor := ""
	for page := 0; ; page++ {
		if page > len(wantOrder) {
			t.Fatal("pagination did not terminate")
		}

		items, nextCursor, err := logic.ListMetadata(context.Background(), ListQuery{
			IsPublic: true,
			Network:  chain.NetworkAlfajores,
			Cursor:   cursor,
			PageSize: 3,
		})
		if err != nil {
			t.Fatalf("page %d returned error: %v", page, err)
		}
		if len(items) > 3 {
			t.Fatalf("page %d has %d items, want at most 3", page, len(items))
		}

		for _, item := range items {
			collected = append(collected, item.BoxAddress)
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	if len(collected) != len(wantOrder) {
		t.Fatalf("collected %d records over all pages, want %d: %v", len(collected), len(wantOrder), collected)
	}
	for i, address := range collected {
		if address != wantOrder[i] {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, address, wantOrder[i], collected)
		}
	}

	seen := make(map[string]bool)
	for _, address := range collected {
		if seen[address] {
			t.Errorf("box %s appeared more than once across pages", address)
		}
		seen[address] = true
	}
}

func TestListMetadataPrivateFiltersByOwner(t *testing.T) {
	db := testMetadataDB(t)
	logic := NewMetadataLogic(db)

	createdAt := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000011", createdAt, "Alfajores", false, testOwner)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000012", createdAt, "Alfajores", false, testReceiver)
	seedMetadata(t, db, "0x0000000000000000000000000000000000000013", createdAt, "Alfajores", true, testOwner)

	items, _, err := logic.ListMetadata(context.Background(), ListQuery{
		IsPublic:     false,
		OwnerAddress: testOwner,
		Network:      chain.NetworkAlfajores,
	})
	if err != nil {
		t.Fatalf("ListMetadata returned error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want only the owner's private box: %v", len(items), items)
	}
	if items[0].BoxAddress != "0x0000000000000000000000000000000000000011" {
		t.Errorf("item = %s, want the owner's private box", items[0].BoxAddress)
	}
}

func TestGetMetadataDefaultsWhenAbsent(t *testing.T) {
	db := testMetadataDB(t)
	logic := NewMetadataLogic(db)

	metadata, err := logic.GetMetadata(context.Background(), testBox)
	if err != nil {
		t.Fatalf("GetMetadata returned error: %v", err)
	}
	if metadata.BoxAddress != testBox || !metadata.Public || metadata.Title != "" {
		t.Errorf("default metadata = %+v, want empty public record", metadata)
	}
}

func TestAttachImage(t *testing.T) {
	db := testMetadataDB(t)
	logic := NewMetadataLogic(db)

	createdAt := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	seedMetadata(t, db, testBox, createdAt, "Alfajores", true, testOwner)

	imageRef := fmt.Sprintf("https://cdn.example.com/box_images/%s", testBox)
	if err := logic.AttachImage(context.Background(), testBox, imageRef); err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}

	metadata, err := logic.GetMetadata(context.Background(), testBox)
	if err != nil {
		t.Fatalf("GetMetadata returned error: %v", err)
	}
	if metadata.ImageRef != imageRef {
		t.Errorf("imageRef = %s, want %s", metadata.ImageRef, imageRef)
	}
}
