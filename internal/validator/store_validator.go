package validator

import (
	"strings"

	"app/internal/domain/model"
)

// 店舗作成の入力検証結果
// 永続化の前に必ず実行する。ストレージの制約エラーとは別物として扱う
type StoreValidation struct {
	MissingFields []string
	InvalidFields []string
}

func (v StoreValidation) OK() bool {
	return len(v.MissingFields) == 0 && len(v.InvalidFields) == 0
}

// NewStoreInputは検証対象のフィールドだけを持つ
type NewStoreInput struct {
	OwnerID      string
	BusinessName string
	BusinessType model.BusinessType
	Plan         model.Plan
}

// ValidateNewStoreは必須項目と列挙値を検証する
func ValidateNewStore(in NewStoreInput) StoreValidation {
	var v StoreValidation

	if strings.TrimSpace(in.OwnerID) == "" {
		v.MissingFields = append(v.MissingFields, "user")
	}
	if strings.TrimSpace(in.BusinessName) == "" {
		v.MissingFields = append(v.MissingFields, "business_name")
	}
	if strings.TrimSpace(string(in.BusinessType)) == "" {
		v.MissingFields = append(v.MissingFields, "business_type")
	} else if !model.ValidBusinessType(in.BusinessType) {
		v.InvalidFields = append(v.InvalidFields, "business_type")
	}

	if in.Plan != "" && !model.ValidPlan(in.Plan) {
		v.InvalidFields = append(v.InvalidFields, "plan")
	}

	return v
}
