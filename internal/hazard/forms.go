package hazard

// FormG is the hazard risk-assessment snapshot persisted per hazard after
// human review. Probability, severity and risk carry the fixed Portuguese
// scale labels (Desprezível/Baixa/Média/Alta); PerigoSignificativo is the
// free-text "Sim"/"Não" flag parsed with Significant.
type FormG struct {
	Tipo                string `json:"tipo"`
	Perigo              string `json:"perigo"`
	Justificativa       string `json:"justificativa"`
	Probabilidade       string `json:"probabilidade"`
	Severidade          string `json:"severidade"`
	Risco               string `json:"risco"`
	Medida              string `json:"medida"`
	PerigoSignificativo string `json:"perigo_significativo"`
	Origem              string `json:"origem"`
}

// FormH is the CCP questionnaire record. Resultado must always equal the
// decision-tree outcome for the stored answers; the HTTP layer re-derives
// it on save rather than trusting the client.
type FormH struct {
	Questao1  string `json:"questao_1"`
	Questao1a string `json:"questao_1a"`
	Questao2  string `json:"questao_2"`
	Questao3  string `json:"questao_3"`
	Questao4  string `json:"questao_4"`
	Resultado string `json:"resultado"`
}

// Monitoring is the what/how/when/who sub-record of a monitoring plan.
type Monitoring struct {
	OQue   string `json:"oque"`
	Como   string `json:"como"`
	Quando string `json:"quando"`
	Quem   string `json:"quem"`
}

// FormI is the monitoring plan for a confirmed CCP. Empty strings mean "no
// suggestion found" for a field; the record itself is always well formed.
type FormI struct {
	LimiteCritico string     `json:"limite_critico"`
	Monitoramento Monitoring `json:"monitoramento"`
	AcaoCorretiva string     `json:"acao_corretiva"`
	Registro      string     `json:"registro"`
	Verificacao   string     `json:"verificacao"`
}
