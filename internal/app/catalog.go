package app

import (
	"net/url"

	"web3-quiz-service/internal/domain"
)

var categories = []domain.Category{
	{ID: "Blockchain_Basics", Name: "Blockchain Basics", Description: "Understand the foundational concepts and technology behind blockchains", QuestionCount: 500},
	{ID: "Web3_Basics", Name: "Web3 Basics", Description: "Explore the principles and components of the decentralized web", QuestionCount: 450},
	{ID: "Cryptocurrency_Basics", Name: "Cryptocurrency Basics", Description: "Learn about digital currencies, wallets, transactions, and more", QuestionCount: 600},
	{ID: "NFTs", Name: "NFT", Description: "Dive into non-fungible tokens, their use cases, and standards", QuestionCount: 400},
	{ID: "DeFi", Name: "DeFi", Description: "Discover decentralized finance protocols, tools, and risks", QuestionCount: 550},
	{ID: "Smart_Contract", Name: "Smart Contract", Description: "Master the programming and execution of self-executing contracts", QuestionCount: 350},
	{ID: "Cryptography", Name: "Cryptography", Description: "Understand the security principles and cryptographic techniques behind blockchain", QuestionCount: 480},
	{ID: "Tokenomics", Name: "Tokenomics", Description: "Explore the economics, distribution, and governance of tokens", QuestionCount: 700},
}

// Categories returns a copy of the quiz catalogue.
func Categories() []domain.Category {
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out
}

// NewQuizLink is the new-quiz screen with categoryID preselected.
func NewQuizLink(categoryID string) string {
	return "/quiz/new?" + url.Values{"category": {categoryID}}.Encode()
}
