package entity

// CSVImport is the batch ingestion request sent to addFromCSV.
type CSVImport struct {
	AppPackageName    string `json:"appPackageName" validate:"required"`
	VirtualItemName   string `json:"virtualItemName" validate:"required"`
	AddBlockchainStub bool   `json:"addBlockchainStub"`
	CSVFileString     string `json:"csvFileString" validate:"required"`
}
