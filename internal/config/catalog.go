package config

import "github.com/adoptioncheck/radar/internal/core"

// defaultCatalog is the built-in technology list: enterprise AI
// platforms and infrastructure on one side, fintech and trading AI on
// the other. Identifiers are optional per source; a technology without
// an npm package is the expected steady state, not a gap.
func defaultCatalog() []core.TechnologySpec {
	return []core.TechnologySpec{
		// Enterprise: AI platforms
		{Name: "openai", DisplayName: "OpenAI API", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "openai/openai-python", NPMPackage: "openai", PyPIPackage: "openai"},
		{Name: "anthropic-claude", DisplayName: "Anthropic Claude", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "anthropics/anthropic-sdk-python", PyPIPackage: "anthropic"},
		{Name: "google-gemini", DisplayName: "Google Gemini", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "google/generative-ai-python", PyPIPackage: "google-generativeai"},
		{Name: "aws-bedrock", DisplayName: "AWS Bedrock", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "awslabs/amazon-bedrock-samples", PyPIPackage: "boto3"},
		{Name: "azure-openai", DisplayName: "Azure OpenAI", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "Azure/azure-sdk-for-python", PyPIPackage: "azure-ai-openai"},
		{Name: "cohere", DisplayName: "Cohere", List: "enterprise", Category: "ai_platform",
			GitHubRepo: "cohere-ai/cohere-python", NPMPackage: "cohere-ai", PyPIPackage: "cohere"},

		// Enterprise: AI infrastructure
		{Name: "langchain", DisplayName: "LangChain", List: "enterprise", Category: "ai_infrastructure",
			GitHubRepo: "langchain-ai/langchain", NPMPackage: "langchain", PyPIPackage: "langchain"},
		{Name: "llamaindex", DisplayName: "LlamaIndex", List: "enterprise", Category: "ai_infrastructure",
			GitHubRepo: "run-llama/llama_index", PyPIPackage: "llama-index"},

		// Enterprise: vector databases
		{Name: "pinecone", DisplayName: "Pinecone", List: "enterprise", Category: "vector_db",
			GitHubRepo: "pinecone-io/pinecone-python-client", PyPIPackage: "pinecone-client"},
		{Name: "weaviate", DisplayName: "Weaviate", List: "enterprise", Category: "vector_db",
			GitHubRepo: "weaviate/weaviate", PyPIPackage: "weaviate-client"},
		{Name: "chromadb", DisplayName: "ChromaDB", List: "enterprise", Category: "vector_db",
			GitHubRepo: "chroma-core/chroma", PyPIPackage: "chromadb"},
		{Name: "qdrant", DisplayName: "Qdrant", List: "enterprise", Category: "vector_db",
			GitHubRepo: "qdrant/qdrant", PyPIPackage: "qdrant-client"},

		// Enterprise: ML platforms
		{Name: "databricks-ai", DisplayName: "Databricks AI", List: "enterprise", Category: "ml_platform",
			GitHubRepo: "databricks/databricks-sdk-py", PyPIPackage: "databricks-sdk"},
		{Name: "huggingface", DisplayName: "Hugging Face", List: "enterprise", Category: "ml_platform",
			GitHubRepo: "huggingface/transformers", PyPIPackage: "transformers"},
		{Name: "mlflow", DisplayName: "MLflow", List: "enterprise", Category: "ml_platform",
			GitHubRepo: "mlflow/mlflow", PyPIPackage: "mlflow"},

		// Fintech: infrastructure
		{Name: "plaid", DisplayName: "Plaid", List: "fintech", Category: "fintech_infrastructure",
			GitHubRepo: "plaid/plaid-python", PyPIPackage: "plaid-python"},
		{Name: "stripe", DisplayName: "Stripe", List: "fintech", Category: "fintech_infrastructure",
			GitHubRepo: "stripe/stripe-python", NPMPackage: "stripe", PyPIPackage: "stripe"},
		{Name: "alpaca", DisplayName: "Alpaca Trading", List: "fintech", Category: "trading_platform",
			GitHubRepo: "alpacahq/alpaca-trade-api-python", PyPIPackage: "alpaca-trade-api"},

		// Fintech: quantitative and backtesting tools
		{Name: "quantlib", DisplayName: "QuantLib", List: "fintech", Category: "quant_tools",
			GitHubRepo: "lballabio/QuantLib", PyPIPackage: "QuantLib"},
		{Name: "zipline", DisplayName: "Zipline", List: "fintech", Category: "trading_backtesting",
			GitHubRepo: "quantopian/zipline", PyPIPackage: "zipline-reloaded"},
		{Name: "backtrader", DisplayName: "Backtrader", List: "fintech", Category: "trading_backtesting",
			GitHubRepo: "mementum/backtrader", PyPIPackage: "backtrader"},
		{Name: "vectorbt", DisplayName: "VectorBT", List: "fintech", Category: "trading_backtesting",
			GitHubRepo: "polakowo/vectorbt", PyPIPackage: "vectorbt"},

		// Fintech: data and forecasting
		{Name: "yfinance", DisplayName: "yfinance", List: "fintech", Category: "financial_data",
			GitHubRepo: "ranaroussi/yfinance", PyPIPackage: "yfinance"},
		{Name: "prophet", DisplayName: "Prophet", List: "fintech", Category: "financial_ai",
			GitHubRepo: "facebook/prophet", PyPIPackage: "prophet"},
		{Name: "numerai", DisplayName: "Numerai", List: "fintech", Category: "trading_ai",
			GitHubRepo: "numerai/numerapi", PyPIPackage: "numerapi"},

		// Fintech: risk and compliance
		{Name: "great-expectations", DisplayName: "Great Expectations", List: "fintech", Category: "risk_compliance",
			GitHubRepo: "great-expectations/great_expectations", PyPIPackage: "great_expectations"},
		{Name: "evidently", DisplayName: "Evidently AI", List: "fintech", Category: "risk_compliance",
			GitHubRepo: "evidentlyai/evidently", PyPIPackage: "evidently"},
	}
}
