package entity

// 逻辑表名到电子表格工作表名的映射。
// 工作表沿用原有表格里的葡语命名，这里集中定义避免散落的字符串
const (
	TableCustomers           = "clientes"
	TableProducts            = "produtos"
	TableSalesOrders         = "pedidos_venda"
	TableSalesOrderItems     = "itens_pedido"
	TableProposals           = "propostas"
	TableProductionOrders    = "ordens_producao"
	TableProductionProcesses = "processos_producao"
	TablePurchases           = "compras"
	TableInventory           = "estoque"
	TableInventoryMovements  = "movimentacoes_estoque"
	TableQualityInspections  = "inspecoes_qualidade"
	TableInspectionCriteria  = "criterios_inspecao"
	TableSuppliers           = "fornecedores"
	TableNotifications       = "notificacoes"
)

// Complexity 产品加工复杂度
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)
