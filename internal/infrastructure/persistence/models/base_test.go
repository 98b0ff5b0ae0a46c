package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/backoffice/backend/internal/domain/shared"
)

func TestTenantAggregateModel_RoundTrip(t *testing.T) {
	creator := uuid.New()
	root := shared.NewTenantAggregateRoot(uuid.New())
	root.CreatedBy = &creator

	var model TenantAggregateModel
	model.FromDomainTenantAggregateRoot(root)

	assert.Equal(t, root.ID, model.ID)
	assert.Equal(t, root.TenantID, model.TenantID)
	assert.Equal(t, root.Version, model.Version)
	assert.Equal(t, &creator, model.CreatedBy)

	var restored shared.TenantAggregateRoot
	model.PopulateTenantAggregateRoot(&restored)

	assert.Equal(t, root.ID, restored.ID)
	assert.Equal(t, root.TenantID, restored.TenantID)
	assert.Equal(t, root.Version, restored.Version)
	assert.Equal(t, &creator, restored.CreatedBy)
}

func TestTenantAggregateModel_NilCreatedBy(t *testing.T) {
	root := shared.NewTenantAggregateRoot(uuid.New())

	var model TenantAggregateModel
	model.FromDomainTenantAggregateRoot(root)
	assert.Nil(t, model.CreatedBy)

	var restored shared.TenantAggregateRoot
	model.PopulateTenantAggregateRoot(&restored)
	assert.Nil(t, restored.CreatedBy)
}
