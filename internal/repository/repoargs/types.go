package repoargs

type RepositoryName string

const (
	AccountRepoName     RepositoryName = "account"
	LedgerRepoName      RepositoryName = "ledger_entry"
	OrderRepoName       RepositoryName = "settlement_order"
	IdempotencyRepoName RepositoryName = "idempotency_key"
)
