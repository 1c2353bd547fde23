package notification

import (
	"context"
	"creativehub/bizerror"
	"creativehub/event"
	"creativehub/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

var (
	testDatabase *testinfra.TestDatabase
)

func setup(t *testing.T) *GormOutbox {
	testinfra.RequireMysql(t)
	testDatabase = testinfra.StartMysqlTestDatabase("creativehub")
	assert.Nil(t, testDatabase.DS.GormDB().AutoMigrate(&Notification{}).Error)
	return NewGormOutbox(testDatabase.DS)
}
func teardown(t *testing.T) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestGormOutbox(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	t.Run("should save once per event and recipient", func(t *testing.T) {
		outbox := setup(t)
		defer teardown(t)

		notifications := []Notification{
			{ID: 1, EventID: 100, RecipientID: 10, Reason: ReasonOwner, Category: event.EventCategoryProjectPublished,
				ProjectID: 1, ProjectUUID: "p-1", ProjectTitle: "logo", Subject: "Project 'logo' was published.",
				CreateTime: types.CurrentTimestamp()},
			{ID: 2, EventID: 101, RecipientID: 10, Reason: ReasonOwner, Category: event.EventCategoryProjectReset,
				ProjectID: 1, ProjectUUID: "p-1", ProjectTitle: "logo", CreateTime: types.CurrentTimestamp()},
		}
		Expect(outbox.Save(ctx, notifications)).To(Succeed())

		redelivered := []Notification{notifications[0]}
		redelivered[0].ID = 3
		Expect(outbox.Save(ctx, redelivered)).To(Succeed())

		list, err := outbox.List(ctx, 10, 1, 10)
		Expect(err).To(BeNil())
		Expect(len(list)).To(Equal(2))

		list, err = outbox.List(ctx, 11, 1, 10)
		Expect(err).To(BeNil())
		Expect(list).To(BeEmpty())
	})

	t.Run("should mark own notification read", func(t *testing.T) {
		outbox := setup(t)
		defer teardown(t)

		Expect(outbox.Save(ctx, []Notification{{ID: 1, EventID: 100, RecipientID: 10, CreateTime: types.CurrentTimestamp()}})).To(Succeed())

		Expect(outbox.MarkRead(ctx, 11, 1)).To(Equal(bizerror.ErrNotFound))
		Expect(outbox.MarkRead(ctx, 10, 1)).To(Succeed())

		list, err := outbox.List(ctx, 10, 1, 10)
		Expect(err).To(BeNil())
		Expect(list[0].Read).To(BeTrue())
	})
}
