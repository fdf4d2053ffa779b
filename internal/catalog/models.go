package catalog

// Relational catalog models. Ownership follows the assessment domain:
// a product owns its steps, a step owns its hazards, and a hazard owns at
// most one justification list, control-measure list and Form H row.

// Produto is a registered product.
type Produto struct {
	ID     uint    `gorm:"column:id_produto;primaryKey;autoIncrement" json:"id"`
	Nome   string  `gorm:"column:nome_produto;type:text;not null;uniqueIndex" json:"nome"`
	Slug   string  `gorm:"column:slug;type:text;not null;uniqueIndex" json:"slug"`
	Etapas []Etapa `gorm:"foreignKey:ProdutoID;constraint:OnDelete:CASCADE" json:"etapas,omitempty"`
}

func (Produto) TableName() string { return "produtos" }

// Etapa is one named process step of a product.
type Etapa struct {
	ID        uint     `gorm:"column:id_etapa;primaryKey;autoIncrement" json:"id"`
	Nome      string   `gorm:"column:nome_etapa;type:text;not null" json:"nome"`
	ProdutoID uint     `gorm:"column:id_produto;not null;index" json:"id_produto"`
	Perigos   []Perigo `gorm:"foreignKey:EtapaID;constraint:OnDelete:CASCADE" json:"perigos,omitempty"`
}

func (Etapa) TableName() string { return "etapas" }

// TipoPerigo is a hazard type with its fixed short code.
type TipoPerigo struct {
	ID     uint   `gorm:"column:id_tipo_perigo;primaryKey;autoIncrement" json:"id"`
	Nome   string `gorm:"column:nome_tipo_perigo;type:text;not null" json:"nome"`
	Codigo string `gorm:"column:codigo_perigo;type:text;not null;uniqueIndex" json:"codigo"`
}

func (TipoPerigo) TableName() string { return "tipos_perigo" }

// Perigo is one hazard identified at a step.
type Perigo struct {
	ID           uint   `gorm:"column:id_perigo;primaryKey;autoIncrement" json:"id"`
	Descricao    string `gorm:"column:descricao_perigo;type:text;not null" json:"descricao"`
	EtapaID      uint   `gorm:"column:id_etapa;not null;index" json:"id_etapa"`
	TipoPerigoID uint   `gorm:"column:id_tipo_perigo;not null" json:"id_tipo_perigo"`
}

func (Perigo) TableName() string { return "perigos" }

// Justificativa is the recorded rationale for a hazard's risk assessment.
type Justificativa struct {
	ID       uint   `gorm:"column:id_justificativa;primaryKey;autoIncrement" json:"id"`
	PerigoID uint   `gorm:"column:id_perigo;not null;index" json:"id_perigo"`
	Texto    string `gorm:"column:texto_justificativa;type:text;not null" json:"texto"`
}

func (Justificativa) TableName() string { return "justificativas" }

// MedidaControle is a control measure recorded for a hazard.
type MedidaControle struct {
	ID       uint   `gorm:"column:id_medida;primaryKey;autoIncrement" json:"id"`
	PerigoID uint   `gorm:"column:id_perigo;not null;index" json:"id_perigo"`
	Texto    string `gorm:"column:texto_medida;type:text;not null" json:"texto"`
}

func (MedidaControle) TableName() string { return "medidas_controle" }

// FormularioH is the relational copy of a hazard's CCP questionnaire:
// unique per hazard, updated in place on re-evaluation.
type FormularioH struct {
	ID        uint   `gorm:"column:id_formulario_h;primaryKey;autoIncrement" json:"id"`
	PerigoID  uint   `gorm:"column:id_perigo;not null;uniqueIndex" json:"id_perigo"`
	Questao1  string `gorm:"column:questao_1;type:text" json:"questao_1"`
	Questao1a string `gorm:"column:questao_1a;type:text" json:"questao_1a"`
	Questao2  string `gorm:"column:questao_2;type:text" json:"questao_2"`
	Questao3  string `gorm:"column:questao_3;type:text" json:"questao_3"`
	Questao4  string `gorm:"column:questao_4;type:text" json:"questao_4"`
	Resultado string `gorm:"column:resultado;type:text;not null" json:"resultado"`
}

func (FormularioH) TableName() string { return "formularios_h" }
