package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/account"
	"github.com/kladi/pulso-go/pkg/config"
)

func TestIsTestResolutionOrder(t *testing.T) {
	svc := NewClassificationService(newTestLogger(t), newTestTracker(), newTestRules())

	tests := []struct {
		name      string
		acct      account.Account
		overrides map[string]bool
		want      bool
	}{
		{
			name: "override by composite key wins over everything",
			acct: account.Account{ID: "123", CompanyName: "Cuenta de Prueba", AdministratorName: "Juan Perez"},
			overrides: map[string]bool{
				"123_juan_perez": false,
			},
			want: false,
		},
		{
			name:      "override by plain id",
			acct:      account.Account{ID: "456", CompanyName: "Ferreteria Real"},
			overrides: map[string]bool{"456": true},
			want:      true,
		},
		{
			name: "banned email domain",
			acct: account.Account{ID: "7", CompanyName: "Negocio", Email: "ops@kladi.mx"},
			want: true,
		},
		{
			name: "numeric id at the threshold",
			acct: account.Account{ID: "100000000", CompanyName: "Negocio"},
			want: true,
		},
		{
			name: "numeric id below the threshold",
			acct: account.Account{ID: "99999999", CompanyName: "Negocio"},
			want: false,
		},
		{
			name: "keyword in company name",
			acct: account.Account{ID: "8", CompanyName: "Demo Shop"},
			want: true,
		},
		{
			name: "keyword in administrator name",
			acct: account.Account{ID: "9", CompanyName: "Negocio", AdministratorName: "QA Team"},
			want: true,
		},
		{
			name: "clean account defaults to not test",
			acct: account.Account{ID: "10", CompanyName: "Panaderia La Espiga", Email: "contacto@espiga.mx"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsTest(&tt.acct, tt.overrides); got != tt.want {
				t.Errorf("IsTest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTestExceptionTableOverridesKeywords(t *testing.T) {
	rules := newTestRules()
	rules.Exceptions = []config.ClassificationException{
		{Match: "prodensa", IsTest: false},
		{Match: "interno", IsTest: true},
	}
	svc := NewClassificationService(newTestLogger(t), newTestTracker(), rules)

	// "prodensa" contains the "prod" keyword; the exception re-includes it.
	carveOut := account.Account{ID: "1", CompanyName: "Prodensa SA de CV"}
	if svc.IsTest(&carveOut, nil) {
		t.Error("exception table should re-include an account the keyword rule would exclude")
	}

	forced := account.Account{ID: "2", CompanyName: "Sistema Interno"}
	if !svc.IsTest(&forced, nil) {
		t.Error("exception table should force-exclude a matching account")
	}

	// First matching entry decides even when a later one also matches.
	both := account.Account{ID: "3", CompanyName: "Prodensa Interno"}
	if svc.IsTest(&both, nil) {
		t.Error("the first matching exception entry must decide")
	}
}

func TestClassifyAllReturnsNonTestSubset(t *testing.T) {
	svc := NewClassificationService(newTestLogger(t), newTestTracker(), newTestRules())

	accounts := []account.Account{
		{ID: "1", CompanyName: "Panaderia"},
		{ID: "2", CompanyName: "Cuenta Test"},
		{ID: "3", CompanyName: "Abarrotes"},
	}

	filtered := svc.ClassifyAll(accounts, nil)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 non-test accounts, got %d", len(filtered))
	}
	if !accounts[1].IsTest {
		t.Error("test account must keep its IsTest flag in the full slice")
	}
	for _, a := range filtered {
		if a.IsTest {
			t.Errorf("account %s should not be in the filtered subset", a.ID)
		}
	}
}
